// Package registry owns the derived state of every live character, keyed
// by character id. It is the single place derived state is invalidated.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/derived"
)

// Registry maps character ids to their derived state.
type Registry struct {
	agg *derived.Aggregator
	log *zap.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*derived.State
}

// New returns an empty registry building with agg.
func New(agg *derived.Aggregator, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{agg: agg, log: log, states: map[uuid.UUID]*derived.State{}}
}

// Get returns the current derived snapshot of c, creating and building its
// state on first access and rebuilding it when dirty.
func (r *Registry) Get(c derived.Character) *derived.Snapshot {
	return r.state(c.ID()).Rebuild(c, r.agg)
}

func (r *Registry) state(id uuid.UUID) *derived.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[id]
	if !ok {
		st = derived.NewState()
		r.states[id] = st
		r.log.Debug("registered character", zap.Stringer("character", id))
	}
	return st
}

// State returns the state registered for id.
func (r *Registry) State(id uuid.UUID) (*derived.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[id]
	return st, ok
}

// MarkDirty invalidates the state of id. It reports whether id is known.
func (r *Registry) MarkDirty(id uuid.UUID) bool {
	st, ok := r.State(id)
	if ok {
		st.MarkDirty()
	}
	return ok
}

// Remove forgets id. It reports whether id was registered.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[id]; !ok {
		return false
	}
	delete(r.states, id)
	r.log.Debug("removed character", zap.Stringer("character", id))
	return true
}

// ClearAll forgets every character.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = map[uuid.UUID]*derived.State{}
}

// Len returns the number of registered characters.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
