// Package rng provides the deterministic random source behind item random
// bonuses. The sequence for a seed must never change: persisted items store
// only their seed and rebuild every number from it.
package rng

import "math/rand"

// countingSource counts raw draws so a position can be replayed exactly,
// even when Intn rejects and redraws.
type countingSource struct {
	src rand.Source64
	n   int64
}

func (s *countingSource) Int63() int64 {
	s.n++
	return s.src.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.n++
	return s.src.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.n = 0
	s.src.Seed(seed)
}

// RNG wraps math/rand.Rand with deterministic position tracking.
type RNG struct {
	seed int64
	cnt  *countingSource
	src  *rand.Rand
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	cnt := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{
		seed: seed,
		cnt:  cnt,
		src:  rand.New(cnt),
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return r.src.Float64()
}

// RangeFloat returns a value in [min, max). When max <= min it returns min
// and still consumes one draw so sequences stay aligned.
func (r *RNG) RangeFloat(min, max float64) float64 {
	f := r.src.Float64()
	if max <= min {
		return min
	}
	return min + (max-min)*f
}

// RangeInt returns a value in [min, max] inclusive. When max <= min it
// returns min and still consumes one draw.
func (r *RNG) RangeInt(min, max int) int {
	if max <= min {
		r.src.Int63()
		return min
	}
	return min + r.src.Intn(max-min+1)
}

// Shuffle permutes n elements with a Fisher-Yates pass from the end.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.src.Intn(i + 1)
		swap(i, j)
	}
}

// Int31 returns a non-negative 31-bit value, used to mint item seeds.
func (r *RNG) Int31() int32 {
	return r.src.Int31()
}

// Position returns the number of raw source draws since creation.
func (r *RNG) Position() int64 {
	return r.cnt.n
}

// Restore creates an RNG and advances it to the given position.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for r.cnt.n < position {
		r.cnt.Int63()
	}
	return r
}
