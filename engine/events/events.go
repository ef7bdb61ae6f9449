// Package events implements single-pass notification dispatch. Handlers
// receive events in emission order and cannot emit further events.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/statcore/types"
)

// BattleScoreChanged is emitted when the local character's battle score
// moves between two builds.
const BattleScoreChanged = "battle_score_changed"

// Handler receives one event.
type Handler func(types.Event)

// Dispatcher routes events to the handlers registered for their type.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewDispatcher returns a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// On registers h for events of type typ. Handlers run in registration order.
func (d *Dispatcher) On(typ string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[typ] = append(d.handlers[typ], h)
}

// Dispatch delivers evts. Single pass, no recursion. A nil dispatcher
// drops everything.
func (d *Dispatcher) Dispatch(evts ...types.Event) {
	if d == nil {
		return
	}
	for _, e := range evts {
		d.mu.RLock()
		hs := d.handlers[e.Type]
		d.mu.RUnlock()
		for _, h := range hs {
			h(e)
		}
	}
}

// BattleScoreChangedEvent builds the notification for a score change.
func BattleScoreChangedEvent(character uuid.UUID, previous, score int) types.Event {
	return types.Event{
		Type: BattleScoreChanged,
		Data: map[string]any{
			"character": character.String(),
			"previous":  previous,
			"score":     score,
			"delta":     score - previous,
		},
	}
}
