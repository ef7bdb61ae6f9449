// Package cache is a keyed TTL store whose entries rebuild their payload
// lazily, and only when the identity they were built from changes.
package cache

import (
	"sync"
	"time"
)

// State is the build state of an entry.
type State uint8

const (
	// Dirty entries rebuild on the next Payload call.
	Dirty State = iota
	// Clean entries serve their stored payload.
	Clean
)

func (s State) String() string {
	if s == Clean {
		return "clean"
	}
	return "dirty"
}

// BuildFunc computes a payload from an identity. It must not fail: an
// identity that cannot be resolved builds a zero payload.
type BuildFunc[I comparable, T any] func(identity I) T

// Entry wraps one payload with the identity it was built from.
type Entry[I comparable, T any] struct {
	mu          sync.Mutex
	lastTouched time.Time // guarded by the owning store's mutex
	identity    I
	state       State
	payload     T
	builds      int

	build   BuildFunc[I, T]
	name    string
	metrics *Metrics
}

// Payload returns the payload, building it first if the entry is dirty.
func (e *Entry[I, T]) Payload() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Dirty {
		e.payload = e.build(e.identity)
		e.state = Clean
		e.builds++
		e.metrics.rebuilt(e.name)
	}
	return e.payload
}

// Identity returns the identity the entry currently tracks.
func (e *Entry[I, T]) Identity() I {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// State returns whether the payload is current.
func (e *Entry[I, T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Builds returns how many times the payload has been built.
func (e *Entry[I, T]) Builds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builds
}

// Options configures a Store.
type Options struct {
	TTL     time.Duration
	Now     func() time.Time // defaults to time.Now
	Metrics *Metrics         // nil disables metrics
}

// Store maps keys to entries with last-touch eviction.
type Store[K comparable, I comparable, T any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	build   BuildFunc[I, T]
	metrics *Metrics

	mu      sync.Mutex
	entries map[K]*Entry[I, T]
}

// New creates a store. name labels metrics.
func New[K comparable, I comparable, T any](name string, build BuildFunc[I, T], opts Options) *Store[K, I, T] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store[K, I, T]{
		name:    name,
		ttl:     opts.TTL,
		now:     now,
		build:   build,
		metrics: opts.Metrics,
		entries: map[K]*Entry[I, T]{},
	}
}

// GetOrCreate touches the entry for key. A missing entry is created and
// built immediately. An entry whose identity differs is marked dirty and
// rebuilt on its next Payload call.
func (s *Store[K, I, T]) GetOrCreate(key K, identity I) *Entry[I, T] {
	s.mu.Lock()
	now := s.now()
	e, ok := s.entries[key]
	if !ok {
		e = &Entry[I, T]{
			identity: identity,
			state:    Dirty,
			build:    s.build,
			name:     s.name,
			metrics:  s.metrics,
		}
		e.lastTouched = now
		s.entries[key] = e
		s.mu.Unlock()
		s.metrics.missed(s.name)
		e.Payload()
		return e
	}
	e.lastTouched = now
	e.mu.Lock()
	if e.identity != identity {
		e.identity = identity
		e.state = Dirty
	}
	e.mu.Unlock()
	s.mu.Unlock()
	s.metrics.hit(s.name)
	return e
}

// Get is GetOrCreate followed by Payload.
func (s *Store[K, I, T]) Get(key K, identity I) T {
	return s.GetOrCreate(key, identity).Payload()
}

// Sweep removes every entry with now - lastTouched >= ttl and returns how
// many were removed. Entries touched after now are kept.
func (s *Store[K, I, T]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if now.Sub(e.lastTouched) >= s.ttl {
			delete(s.entries, k)
			removed++
		}
	}
	s.metrics.evicted(s.name, removed)
	return removed
}

// Clear removes every entry.
func (s *Store[K, I, T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[K]*Entry[I, T]{}
}

// Len returns the number of entries.
func (s *Store[K, I, T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Name returns the store's metrics label.
func (s *Store[K, I, T]) Name() string {
	return s.name
}
