// Package engine wires definitions, snapshot caches, the aggregator and the
// registry together around one local character, and runs console commands
// against it through Step.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/cache"
	"github.com/nathoo/statcore/engine/character"
	"github.com/nathoo/statcore/engine/derived"
	"github.com/nathoo/statcore/engine/effects"
	"github.com/nathoo/statcore/engine/events"
	"github.com/nathoo/statcore/engine/registry"
	"github.com/nathoo/statcore/engine/rng"
	"github.com/nathoo/statcore/engine/rules"
	"github.com/nathoo/statcore/engine/snapshot"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// DefaultCacheTTL is used when Options.CacheTTL is zero.
const DefaultCacheTTL = 5 * time.Minute

// Options configures an Engine.
type Options struct {
	CacheTTL          time.Duration
	EarlyExitAilments bool
	LimitWeight       bool
	LimitSlot         bool
	Logger            *zap.Logger
	Metrics           prometheus.Registerer // nil leaves collectors unregistered
	Rules             rules.Rules           // nil uses rules.FromDefs
	Now               func() time.Time
	Seed              int64 // item seed generator; 0 seeds from the clock
	Name              string
}

// Engine holds the definitions, the caches and the local character. Step
// must not be called concurrently; Sweep may run alongside it.
type Engine struct {
	Defs      *state.Defs
	Character *character.Sheet
	RNG       *rng.RNG
	Events    *events.Dispatcher

	caches   *snapshot.Caches
	registry *registry.Registry
	log      *zap.Logger
	now      func() time.Time
	pending  []types.Event
}

// New creates an engine over defs with a fresh local character.
func New(defs *state.Defs, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Now().UnixNano()
	}
	if opts.Name == "" {
		opts.Name = "Adventurer"
	}

	e := &Engine{
		Defs:      defs,
		Character: character.New(opts.Name),
		RNG:       rng.New(opts.Seed),
		Events:    events.NewDispatcher(),
		log:       opts.Logger,
		now:       opts.Now,
	}

	var hooks []buff.Hook
	if len(defs.Plugins) > 0 {
		hooks = append(hooks, pluginHook(defs.Plugins, opts.Logger))
	}
	e.caches = snapshot.New(defs, snapshot.Options{
		TTL:     opts.CacheTTL,
		Now:     opts.Now,
		Metrics: cache.NewMetrics(opts.Metrics),
		Builder: buff.NewBuilder(hooks...),
		Logger:  opts.Logger,
	})
	agg := derived.NewAggregator(defs, e.caches, derived.Options{
		Rules:             opts.Rules,
		Dispatcher:        e.Events,
		Logger:            opts.Logger,
		Metrics:           derived.NewMetrics(opts.Metrics),
		EarlyExitAilments: opts.EarlyExitAilments,
		LimitWeight:       opts.LimitWeight,
		LimitSlot:         opts.LimitSlot,
		IsLocal:           e.isLocal,
	})
	e.registry = registry.New(agg, opts.Logger)
	e.Events.On(events.BattleScoreChanged, func(ev types.Event) {
		e.pending = append(e.pending, ev)
	})
	return e
}

// pluginHook applies every plugin targeting the built buff, or all buffs
// with "*".
func pluginHook(plugins []types.PluginDef, log *zap.Logger) buff.Hook {
	return func(def *types.BuffDef, level int, c *buff.Calculated) {
		for _, p := range plugins {
			if p.Buff == "*" || p.Buff == def.ID {
				effects.Apply(c, p.Patches, log)
			}
		}
	}
}

func (e *Engine) isLocal(id uuid.UUID) bool {
	return e.Character != nil && e.Character.ID() == id
}

// Derived returns the local character's derived snapshot.
func (e *Engine) Derived() *derived.Snapshot {
	return e.registry.Get(e.Character)
}

// Invalidate marks the local character dirty.
func (e *Engine) Invalidate() {
	e.registry.MarkDirty(e.Character.ID())
}

// SetCharacter replaces the local character, dropping the previous one's
// derived state.
func (e *Engine) SetCharacter(s *character.Sheet) {
	if e.Character != nil {
		e.registry.Remove(e.Character.ID())
	}
	e.Character = s
}

// NewItemSeed draws the random seed for a newly created item.
func (e *Engine) NewItemSeed() int32 {
	return e.RNG.Int31()
}

// Sweep evicts snapshots idle since before now - ttl.
func (e *Engine) Sweep(now time.Time) int {
	return e.caches.Sweep(now)
}

// CachedSnapshots returns the number of cached source snapshots.
func (e *Engine) CachedSnapshots() int {
	return e.caches.Len()
}

// RunSweeper sweeps the caches every interval until ctx is done.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := e.Sweep(e.now()); n > 0 {
				e.log.Debug("sweeper evicted snapshots", zap.Int("evicted", n))
			}
		}
	}
}
