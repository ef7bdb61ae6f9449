package rng

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	rng1 := New(42)
	rng2 := New(42)

	for i := 0; i < 20; i++ {
		a := rng1.RangeInt(1, 6)
		b := rng2.RangeInt(1, 6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_RangeInt_Inclusive(t *testing.T) {
	rng := New(99)
	seen := map[int]bool{}

	for i := 0; i < 1000; i++ {
		r := rng.RangeInt(1, 6)
		if r < 1 || r > 6 {
			t.Fatalf("roll out of range [1,6]: got %d", r)
		}
		seen[r] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected all 6 faces in 1000 rolls, saw %d", len(seen))
	}
}

func TestRNG_RangeInt_Degenerate(t *testing.T) {
	rng := New(1)
	before := rng.Position()
	if r := rng.RangeInt(3, 3); r != 3 {
		t.Fatalf("RangeInt(3, 3) = %d, want 3", r)
	}
	if r := rng.RangeInt(5, 2); r != 5 {
		t.Fatalf("RangeInt(5, 2) = %d, want 5", r)
	}
	if rng.Position() != before+2 {
		t.Errorf("degenerate ranges should still draw, position = %d", rng.Position())
	}
}

func TestRNG_RangeFloat(t *testing.T) {
	rng := New(7)
	for i := 0; i < 1000; i++ {
		f := rng.RangeFloat(2, 4)
		if f < 2 || f >= 4 {
			t.Fatalf("RangeFloat(2, 4) = %v out of range", f)
		}
	}
	if f := rng.RangeFloat(5, 5); f != 5 {
		t.Errorf("RangeFloat(5, 5) = %v, want 5", f)
	}
}

func TestRNG_Shuffle_Permutation(t *testing.T) {
	rng := New(42)
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })

	seen := map[int]bool{}
	for _, x := range xs {
		seen[x] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffle lost elements: %v", xs)
	}
}

func TestRNG_Shuffle_Deterministic(t *testing.T) {
	a := []int{0, 1, 2, 3, 4, 5, 6, 7}
	b := []int{0, 1, 2, 3, 4, 5, 6, 7}
	New(5).Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
	New(5).Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle differs at %d: %v vs %v", i, a, b)
		}
	}
}

func TestRNG_Position_Tracks(t *testing.T) {
	rng := New(42)

	if rng.Position() != 0 {
		t.Fatalf("expected position 0, got %d", rng.Position())
	}

	rng.Float64()
	if rng.Position() != 1 {
		t.Fatalf("expected position 1, got %d", rng.Position())
	}

	rng.RangeFloat(0, 10)
	rng.Float64()
	if rng.Position() != 3 {
		t.Fatalf("expected position 3, got %d", rng.Position())
	}
}

func TestRNG_Restore_MatchesPosition(t *testing.T) {
	// Advance an RNG with mixed draws and record the next 5 values.
	rng := New(42)
	for i := 0; i < 10; i++ {
		rng.RangeInt(1, 7)
		rng.Float64()
	}
	pos := rng.Position()

	var expected [5]float64
	for i := range expected {
		expected[i] = rng.Float64()
	}

	restored := Restore(42, pos)
	if restored.Position() != pos {
		t.Fatalf("expected position %d, got %d", pos, restored.Position())
	}

	for i, want := range expected {
		if got := restored.Float64(); got != want {
			t.Fatalf("draw %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestRNG_DifferentSeeds_DifferentResults(t *testing.T) {
	rng1 := New(1)
	rng2 := New(2)

	differs := false
	for i := 0; i < 20; i++ {
		if rng1.RangeInt(1, 100) != rng2.RangeInt(1, 100) {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("expected different seeds to produce different results")
	}
}

// Persisted items replay from the seed alone, so the stream is pinned.
func TestRNG_GoldenStream(t *testing.T) {
	rng := New(1)
	wantFloats := []float64{0.6046602879796196, 0.9405090880450124, 0.6645600532184904}
	for i, want := range wantFloats {
		if got := rng.Float64(); got != want {
			t.Errorf("seed 1 Float64 #%d = %v, want %v", i, got, want)
		}
	}
	if rng.Position() != 3 {
		t.Errorf("Position = %d, want 3", rng.Position())
	}

	rng = New(42)
	wantInts := []int{5, 7, 8, 0, 3}
	for i, want := range wantInts {
		if got := rng.RangeInt(0, 9); got != want {
			t.Errorf("seed 42 RangeInt(0, 9) #%d = %d, want %d", i, got, want)
		}
	}
}
