package derived

import (
	"sync"

	"github.com/nathoo/statcore/engine/cache"
)

// State is the per-character derived state. Rebuilds of one State are
// serialized; distinct States rebuild independently.
type State struct {
	mu     sync.Mutex
	status cache.State
	snap   *Snapshot
}

// NewState returns a dirty state with no snapshot.
func NewState() *State {
	return &State{status: cache.Dirty}
}

// MarkDirty schedules a rebuild on the next read.
func (s *State) MarkDirty() {
	s.mu.Lock()
	s.status = cache.Dirty
	s.mu.Unlock()
}

// Status reports whether the state needs a rebuild.
func (s *State) Status() cache.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Rebuild returns the current snapshot, building it first when dirty.
func (s *State) Rebuild(c Character, agg *Aggregator) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == cache.Clean && s.snap != nil {
		return s.snap
	}
	s.snap = agg.Build(c, s.snap)
	s.status = cache.Clean
	return s.snap
}

// Snapshot returns the last built snapshot, which may be stale or nil.
func (s *State) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
