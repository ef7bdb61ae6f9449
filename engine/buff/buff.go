// Package buff resolves a buff definition at a level into a Calculated
// snapshot of concrete numbers.
package buff

import (
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// Calculated is an immutable-once-built buff snapshot. Hooks may mutate it
// before the builder returns it.
type Calculated struct {
	Def   *types.BuffDef // nil for the zero snapshot
	Level int

	duration   float64
	noDuration bool

	RecoveryHP      float64
	RecoveryMP      float64
	RecoveryStamina float64
	RecoveryFood    float64
	RecoveryWater   float64

	stats.Bonus

	StatusEffectResistances map[string]float64
	BuffRemovals            map[string]float64

	RemoveOnAttackChance     float64
	RemoveOnAttackedChance   float64
	RemoveOnUseSkillChance   float64
	RemoveOnUseItemChance    float64
	RemoveOnPickupItemChance float64

	MaxStack   int
	Mount      string
	MountLevel int

	IsOverrideDamageInfo bool
	OverrideDamageInfo   types.DamageInfo
	IsOverrideSkills     bool
	OverrideSkills       map[string]int

	Ailment           types.AilmentPreset
	Disallow          types.AilmentFlags
	IsHide            bool
	IsRevealsHide     bool
	IsBlind           bool
	MuteFootstepSound bool
}

// Duration returns the buff duration in seconds. No-duration buffs report 1
// so timers never see zero.
func (c *Calculated) Duration() float64 {
	if c.noDuration {
		return 1
	}
	return c.duration
}

// RawDuration returns the stored duration, ignoring NoDuration.
func (c *Calculated) RawDuration() float64 {
	return c.duration
}

// SetDuration replaces the stored duration.
func (c *Calculated) SetDuration(d float64) {
	c.duration = d
}

// NoDuration reports whether the buff lasts until removed.
func (c *Calculated) NoDuration() bool {
	return c.noDuration
}

// Hook mutates a freshly built snapshot. Hooks run in registration order.
type Hook func(def *types.BuffDef, level int, c *Calculated)

// Builder builds snapshots and runs hooks on them.
type Builder struct {
	hooks []Hook
}

// NewBuilder returns a builder running hooks after every non-nil build.
func NewBuilder(hooks ...Hook) *Builder {
	return &Builder{hooks: hooks}
}

// Build resolves def at level and runs the builder's hooks. A nil def
// yields the zero snapshot and skips hooks.
func (b *Builder) Build(def *types.BuffDef, level int) *Calculated {
	c := Build(def, level)
	if def == nil || b == nil {
		return c
	}
	for _, h := range b.hooks {
		h(def, level, c)
	}
	return c
}

// Zero returns an empty snapshot with allocated maps.
func Zero() *Calculated {
	return &Calculated{
		Bonus:                   stats.NewBonus(),
		StatusEffectResistances: map[string]float64{},
		BuffRemovals:            map[string]float64{},
		OverrideSkills:          map[string]int{},
	}
}

// Build resolves def at level without hooks.
func Build(def *types.BuffDef, level int) *Calculated {
	c := Zero()
	if def == nil {
		return c
	}
	c.Def = def
	c.Level = level

	c.duration = stats.Float(def.Duration, level)
	c.noDuration = def.NoDuration

	c.RecoveryHP = stats.Float(def.RecoveryHP, level)
	c.RecoveryMP = stats.Float(def.RecoveryMP, level)
	c.RecoveryStamina = stats.Float(def.RecoveryStamina, level)
	c.RecoveryFood = stats.Float(def.RecoveryFood, level)
	c.RecoveryWater = stats.Float(def.RecoveryWater, level)

	c.Bonus = stats.At(def.BonusDef, level)

	for k, v := range def.StatusEffectResistances {
		c.StatusEffectResistances[k] = stats.Float(v, level)
	}
	for k, v := range def.BuffRemovals {
		c.BuffRemovals[k] = stats.Float(v, level)
	}

	c.RemoveOnAttackChance = stats.Float(def.RemoveOnAttackChance, level)
	c.RemoveOnAttackedChance = stats.Float(def.RemoveOnAttackedChance, level)
	c.RemoveOnUseSkillChance = stats.Float(def.RemoveOnUseSkillChance, level)
	c.RemoveOnUseItemChance = stats.Float(def.RemoveOnUseItemChance, level)
	c.RemoveOnPickupItemChance = stats.Float(def.RemoveOnPickupItemChance, level)

	c.MaxStack = stats.Int(def.MaxStack, level)
	c.Mount = def.Mount
	if def.Mount != "" {
		c.MountLevel = stats.Int(def.MountLevel, level)
	}

	c.IsOverrideDamageInfo = def.IsOverrideDamageInfo
	c.OverrideDamageInfo = def.OverrideDamageInfo
	c.IsOverrideSkills = def.IsOverrideSkills
	for k, v := range def.OverrideSkills {
		c.OverrideSkills[k] = stats.Int(v, level)
	}

	c.Ailment = def.Ailment
	c.Disallow = def.Disallow
	c.IsHide = def.IsHide
	c.IsRevealsHide = def.IsRevealsHide
	c.IsBlind = def.IsBlind
	c.MuteFootstepSound = def.MuteFootstepSound
	return c
}
