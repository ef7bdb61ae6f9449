package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Skills["haste"] = &types.SkillDef{ID: "haste", Buff: &types.BuffDef{
		ID:       "skill:haste",
		Duration: types.IncrementalFloat{Base: 5, PerLevel: 1},
	}}
	defs.Skills["toughness"] = &types.SkillDef{ID: "toughness", Type: types.SkillPassive, Buff: &types.BuffDef{
		ID:       "skill:toughness",
		BonusDef: types.BonusDef{Armors: map[string]types.IncrementalFloat{"physical": {Base: 1, PerLevel: 1}}},
	}}
	defs.Items["sword"] = &types.ItemDef{
		ID:   "sword",
		Type: types.ItemWeapon,
		RandomBonus: types.RandomBonusDef{
			Attributes: []types.RandomFloatEntry{{ID: "str", Min: 1, Max: 10, ApplyRate: 1}},
		},
	}
	defs.Summons["wolf"] = &types.SummonDef{ID: "wolf", Buff: &types.BuffDef{
		ID:       "summon:wolf",
		BonusDef: types.BonusDef{Attributes: map[string]types.IncrementalFloat{"str": {Base: 1}}},
	}}
	defs.Mounts["horse"] = &types.MountDef{ID: "horse", Buff: &types.BuffDef{ID: "mount:horse", IsRevealsHide: true}}
	return defs
}

func newCaches(now *time.Time) *Caches {
	return New(testDefs(), Options{
		TTL:    time.Minute,
		Now:    func() time.Time { return *now },
		Logger: zap.NewNop(),
	})
}

func TestBuff_ReusesSnapshotUntilIdentityChanges(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	b := types.CharacterBuff{ID: "b1", Kind: types.BuffSkill, DataID: "haste", Level: 1}
	first := c.Buff(b)
	assert.Same(t, first, c.Buff(b))
	assert.Equal(t, 5.0, first.Duration())

	b.Level = 3
	second := c.Buff(b)
	assert.NotSame(t, first, second)
	assert.Equal(t, 7.0, second.Duration())
}

func TestBuff_UnknownDefinitionIsZero(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	got := c.Buff(types.CharacterBuff{ID: "x", Kind: types.BuffStatusEffect, DataID: "nope", Level: 1})
	require.NotNil(t, got)
	assert.Nil(t, got.Def)
	assert.True(t, got.Bonus.IsZero())
}

func TestItem_RebuildsOnSeedChange(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	ci := types.CharacterItem{ID: "i1", DataID: "sword", Level: 1, RandomSeed: 1, Version: 2}
	first := c.Item(ci)
	assert.Same(t, first, c.Item(ci))
	assert.Equal(t, ci.RandomSeed, first.Identity.RandomSeed)

	ci.RandomSeed = 2
	second := c.Item(ci)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), second.Identity.RandomSeed)
}

func TestSummonAndMount(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	s := c.Summon(types.CharacterSummon{ID: "s1", Kind: types.SummonSkill, DataID: "wolf", Level: 1})
	assert.Equal(t, 1.0, s.Attributes["str"])

	m := c.Mount(types.CharacterMount{DataID: "horse", Level: 1})
	assert.True(t, m.IsRevealsHide)
}

func TestPassiveSkill(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	p := c.PassiveSkill("toughness", 3)
	assert.Equal(t, 3.0, p.Armors["physical"])
	assert.Same(t, p, c.PassiveSkill("toughness", 3))

	assert.Nil(t, c.PassiveSkill("haste", 1).Def, "active skills have no passive buff")
}

func TestSweepAndClear(t *testing.T) {
	now := time.Unix(0, 0)
	c := newCaches(&now)

	c.Buff(types.CharacterBuff{ID: "b1", Kind: types.BuffSkill, DataID: "haste", Level: 1})
	c.Item(types.CharacterItem{ID: "i1", DataID: "sword", Level: 1})
	now = now.Add(30 * time.Second)
	c.Summon(types.CharacterSummon{ID: "s1", DataID: "wolf", Level: 1})
	assert.Equal(t, 3, c.Len())

	assert.Equal(t, 2, c.Sweep(time.Unix(0, 0).Add(time.Minute)))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestHooksApplyThroughBuilder(t *testing.T) {
	now := time.Unix(0, 0)
	c := New(testDefs(), Options{
		TTL: time.Minute,
		Now: func() time.Time { return now },
		Builder: buff.NewBuilder(func(def *types.BuffDef, level int, b *buff.Calculated) {
			b.SetDuration(99)
		}),
	})
	got := c.Buff(types.CharacterBuff{ID: "b1", Kind: types.BuffSkill, DataID: "haste", Level: 1})
	assert.Equal(t, 99.0, got.Duration())
}
