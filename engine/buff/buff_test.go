package buff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/statcore/types"
)

func hasteDef() *types.BuffDef {
	def := &types.BuffDef{
		ID:         "skill:haste",
		Duration:   types.IncrementalFloat{Base: 10, PerLevel: 2},
		RecoveryHP: types.IncrementalFloat{Base: 1, PerLevel: 1},
		BonusDef: types.BonusDef{
			Attributes: map[string]types.IncrementalFloat{"dex": {Base: 2, PerLevel: 1}},
		},
		StatusEffectResistances: map[string]types.IncrementalFloat{"stun": {Base: 0.1}},
		BuffRemovals:            map[string]types.IncrementalFloat{"debuff": {Base: 0.5}},
		RemoveOnAttackChance:    types.IncrementalFloat{Base: 0.25},
		MaxStack:                types.IncrementalInt{Base: 1, PerLevel: 1},
		Mount:                   "horse",
		MountLevel:              types.IncrementalInt{Base: 2},
		IsOverrideSkills:        true,
		OverrideSkills:          map[string]types.IncrementalInt{"dash": {Base: 1, PerLevel: 1}},
		Ailment:                 types.AilmentMute,
	}
	def.Stats.Base[types.StatMoveSpeed] = 1
	return def
}

func TestBuild_NilDefinition(t *testing.T) {
	c := Build(nil, 3)
	require.NotNil(t, c)
	assert.Nil(t, c.Def)
	assert.Equal(t, 0.0, c.Duration())
	assert.True(t, c.Bonus.IsZero())
	assert.NotNil(t, c.OverrideSkills)
}

func TestBuild_EvaluatesAtLevel(t *testing.T) {
	c := Build(hasteDef(), 3)

	assert.Equal(t, 14.0, c.Duration())
	assert.Equal(t, 3.0, c.RecoveryHP)
	assert.Equal(t, 4.0, c.Attributes["dex"])
	assert.Equal(t, 1.0, c.Stats[types.StatMoveSpeed])
	assert.Equal(t, 0.1, c.StatusEffectResistances["stun"])
	assert.Equal(t, 0.5, c.BuffRemovals["debuff"])
	assert.Equal(t, 0.25, c.RemoveOnAttackChance)
	assert.Equal(t, 3, c.MaxStack)
	assert.Equal(t, "horse", c.Mount)
	assert.Equal(t, 2, c.MountLevel)
	assert.True(t, c.IsOverrideSkills)
	assert.Equal(t, map[string]int{"dash": 3}, c.OverrideSkills)
	assert.Equal(t, types.AilmentMute, c.Ailment)
}

func TestBuild_NoDurationReportsOne(t *testing.T) {
	def := hasteDef()
	def.NoDuration = true
	def.Duration = types.IncrementalFloat{}

	c := Build(def, 1)
	assert.True(t, c.NoDuration())
	assert.Equal(t, 1.0, c.Duration())

	c.SetDuration(50)
	assert.Equal(t, 1.0, c.Duration())
}

func TestBuilder_RunsHooksInOrder(t *testing.T) {
	var order []string
	b := NewBuilder(
		func(def *types.BuffDef, level int, c *Calculated) {
			order = append(order, "first")
			c.SetDuration(c.Duration() * 2)
		},
		func(def *types.BuffDef, level int, c *Calculated) {
			order = append(order, "second")
			c.RecoveryMP = float64(level)
		},
	)

	c := b.Build(hasteDef(), 1)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 20.0, c.Duration())
	assert.Equal(t, 1.0, c.RecoveryMP)
}

func TestBuilder_SkipsHooksForNil(t *testing.T) {
	called := false
	b := NewBuilder(func(*types.BuffDef, int, *Calculated) { called = true })
	b.Build(nil, 1)
	assert.False(t, called)
}

func TestBuild_DoesNotAliasDefinitionMaps(t *testing.T) {
	def := hasteDef()
	c := Build(def, 1)
	c.Attributes["dex"] = 99
	assert.Equal(t, 2.0, Build(def, 1).Attributes["dex"])
}
