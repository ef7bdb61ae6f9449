// Package snapshot keeps the per-source snapshot caches: one entry per buff,
// item, summon and mount instance, validated by its identity tuple.
package snapshot

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/cache"
	"github.com/nathoo/statcore/engine/itembuff"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// Options configures the caches.
type Options struct {
	TTL     time.Duration
	Now     func() time.Time
	Metrics *cache.Metrics
	Builder *buff.Builder // nil builds without hooks
	Logger  *zap.Logger
}

type mountIdentity struct {
	DataID string
	Level  int
}

// Caches owns the typed snapshot stores.
type Caches struct {
	defs    *state.Defs
	builder *buff.Builder
	log     *zap.Logger

	buffs   *cache.Store[string, types.BuffIdentity, *buff.Calculated]
	items   *cache.Store[string, types.ItemIdentity, *itembuff.Calculated]
	summons *cache.Store[string, types.SummonIdentity, *buff.Calculated]
	mounts  *cache.Store[string, mountIdentity, *buff.Calculated]
}

// New creates empty caches over defs.
func New(defs *state.Defs, opts Options) *Caches {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Caches{defs: defs, builder: opts.Builder, log: log}
	co := cache.Options{TTL: opts.TTL, Now: opts.Now, Metrics: opts.Metrics}

	c.buffs = cache.New[string, types.BuffIdentity, *buff.Calculated]("buffs", c.buildBuff, co)
	c.items = cache.New[string, types.ItemIdentity, *itembuff.Calculated]("items", c.buildItem, co)
	c.summons = cache.New[string, types.SummonIdentity, *buff.Calculated]("summons", c.buildSummon, co)
	c.mounts = cache.New[string, mountIdentity, *buff.Calculated]("mounts", c.buildMount, co)
	return c
}

func (c *Caches) buildBuff(id types.BuffIdentity) *buff.Calculated {
	def := state.Buff(c.defs, id.Kind, id.DataID)
	if def == nil {
		c.log.Debug("unresolved buff", zap.String("kind", types.BuffKindNames[id.Kind]), zap.String("id", id.DataID))
	}
	return c.builder.Build(def, id.Level)
}

func (c *Caches) buildItem(id types.ItemIdentity) *itembuff.Calculated {
	item := state.Item(c.defs, id.DataID)
	if item == nil {
		c.log.Debug("unresolved item", zap.String("id", id.DataID))
	}
	out := itembuff.Build(item, id.Level, id.RandomSeed, id.Version)
	out.Identity = id
	return out
}

func (c *Caches) buildSummon(id types.SummonIdentity) *buff.Calculated {
	def := state.SummonBuff(c.defs, id.DataID)
	if def == nil {
		c.log.Debug("summon without buff", zap.String("id", id.DataID))
	}
	return c.builder.Build(def, id.Level)
}

func (c *Caches) buildMount(id mountIdentity) *buff.Calculated {
	return c.builder.Build(state.MountBuff(c.defs, id.DataID), id.Level)
}

// Buff returns the snapshot of an active buff.
func (c *Caches) Buff(b types.CharacterBuff) *buff.Calculated {
	id := types.BuffIdentity{Kind: b.Kind, DataID: b.DataID, Level: b.Level}
	key := b.ID
	if key == "" {
		key = fmt.Sprintf("%d:%s:%d", b.Kind, b.DataID, b.Level)
	}
	return c.buffs.Get(key, id)
}

// PassiveSkill returns the snapshot of a passive skill's buff at level. Non
// passive skills yield the zero snapshot.
func (c *Caches) PassiveSkill(skillID string, level int) *buff.Calculated {
	if state.PassiveBuff(c.defs, skillID) == nil {
		return buff.Zero()
	}
	id := types.BuffIdentity{Kind: types.BuffSkill, DataID: skillID, Level: level}
	return c.buffs.Get(fmt.Sprintf("passive:%s:%d", skillID, level), id)
}

// Item returns the merged bonus snapshot of an item instance.
func (c *Caches) Item(ci types.CharacterItem) *itembuff.Calculated {
	id := types.ItemIdentity{DataID: ci.DataID, Level: ci.Level, RandomSeed: ci.RandomSeed, Version: ci.Version}
	key := ci.ID
	if key == "" {
		key = fmt.Sprintf("%s:%d:%d:%d", ci.DataID, ci.Level, ci.RandomSeed, ci.Version)
	}
	return c.items.Get(key, id)
}

// Summon returns the owner buff snapshot of a summon.
func (c *Caches) Summon(s types.CharacterSummon) *buff.Calculated {
	id := types.SummonIdentity{Kind: s.Kind, DataID: s.DataID, Level: s.Level}
	key := s.ID
	if key == "" {
		key = fmt.Sprintf("%d:%s:%d", s.Kind, s.DataID, s.Level)
	}
	return c.summons.Get(key, id)
}

// Mount returns the rider buff snapshot of a mount.
func (c *Caches) Mount(m types.CharacterMount) *buff.Calculated {
	id := mountIdentity{DataID: m.DataID, Level: m.Level}
	return c.mounts.Get(fmt.Sprintf("%s:%d", m.DataID, m.Level), id)
}

// Sweep evicts idle entries from every store and returns the total evicted.
func (c *Caches) Sweep(now time.Time) int {
	n := c.buffs.Sweep(now) + c.items.Sweep(now) + c.summons.Sweep(now) + c.mounts.Sweep(now)
	if n > 0 {
		c.log.Debug("swept snapshot caches", zap.Int("evicted", n))
	}
	return n
}

// Clear empties every store.
func (c *Caches) Clear() {
	c.buffs.Clear()
	c.items.Clear()
	c.summons.Clear()
	c.mounts.Clear()
}

// Len returns the total number of cached entries.
func (c *Caches) Len() int {
	return c.buffs.Len() + c.items.Len() + c.summons.Len() + c.mounts.Len()
}
