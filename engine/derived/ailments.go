package derived

import (
	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/types"
)

// Ailments are the restriction flags a character currently suffers from.
type Ailments struct {
	types.AilmentFlags

	IsHide            bool
	IsRevealsHide     bool
	IsBlind           bool
	MuteFootstepSound bool

	RemoveBuffOnAttack     bool
	RemoveBuffOnAttacked   bool
	RemoveBuffOnUseSkill   bool
	RemoveBuffOnUseItem    bool
	RemoveBuffOnPickupItem bool
}

// AilmentCount is the number of flags tracked by Ailments.
const AilmentCount = 20

var (
	stunFlags = types.AilmentFlags{
		DisallowMove:     true,
		DisallowSprint:   true,
		DisallowWalk:     true,
		DisallowJump:     true,
		DisallowDash:     true,
		DisallowCrouch:   true,
		DisallowCrawl:    true,
		DisallowAttack:   true,
		DisallowUseSkill: true,
		DisallowUseItem:  true,
	}
	freezeFlags = func() types.AilmentFlags {
		f := stunFlags
		f.FreezeAnimation = true
		return f
	}()
	muteFlags = types.AilmentFlags{DisallowUseSkill: true}
)

// Flags returns every flag in a fixed order.
func (a Ailments) Flags() [AilmentCount]bool {
	return [AilmentCount]bool{
		a.DisallowMove, a.DisallowSprint, a.DisallowWalk, a.DisallowJump,
		a.DisallowDash, a.DisallowCrouch, a.DisallowCrawl, a.DisallowAttack,
		a.DisallowUseSkill, a.DisallowUseItem, a.FreezeAnimation,
		a.IsHide, a.IsRevealsHide, a.IsBlind, a.MuteFootstepSound,
		a.RemoveBuffOnAttack, a.RemoveBuffOnAttacked, a.RemoveBuffOnUseSkill,
		a.RemoveBuffOnUseItem, a.RemoveBuffOnPickupItem,
	}
}

// All reports whether every flag is set.
func (a Ailments) All() bool {
	for _, f := range a.Flags() {
		if !f {
			return false
		}
	}
	return true
}

// Active returns the names of the set flags.
func (a Ailments) Active() []string {
	var out []string
	for i, f := range a.Flags() {
		if f {
			out = append(out, AilmentNames[i])
		}
	}
	return out
}

// AilmentNames labels the entries of Flags.
var AilmentNames = [AilmentCount]string{
	"disallow_move", "disallow_sprint", "disallow_walk", "disallow_jump",
	"disallow_dash", "disallow_crouch", "disallow_crawl", "disallow_attack",
	"disallow_use_skill", "disallow_use_item", "freeze_animation",
	"hide", "reveals_hide", "blind", "mute_footstep_sound",
	"remove_on_attack", "remove_on_attacked", "remove_on_use_skill",
	"remove_on_use_item", "remove_on_pickup_item",
}

// apply ORs the flags of one buff snapshot into a. A named preset replaces
// the buff's own disallow flags.
func (a *Ailments) apply(b *buff.Calculated) {
	if b == nil || b.Def == nil {
		return
	}
	switch b.Ailment {
	case types.AilmentStun:
		a.or(stunFlags)
	case types.AilmentFreeze:
		a.or(freezeFlags)
	case types.AilmentMute:
		a.or(muteFlags)
	default:
		a.or(b.Disallow)
	}
	a.IsHide = a.IsHide || b.IsHide
	a.IsRevealsHide = a.IsRevealsHide || b.IsRevealsHide
	a.IsBlind = a.IsBlind || b.IsBlind
	a.MuteFootstepSound = a.MuteFootstepSound || b.MuteFootstepSound

	a.RemoveBuffOnAttack = a.RemoveBuffOnAttack || b.RemoveOnAttackChance > 0
	a.RemoveBuffOnAttacked = a.RemoveBuffOnAttacked || b.RemoveOnAttackedChance > 0
	a.RemoveBuffOnUseSkill = a.RemoveBuffOnUseSkill || b.RemoveOnUseSkillChance > 0
	a.RemoveBuffOnUseItem = a.RemoveBuffOnUseItem || b.RemoveOnUseItemChance > 0
	a.RemoveBuffOnPickupItem = a.RemoveBuffOnPickupItem || b.RemoveOnPickupItemChance > 0
}

func (a *Ailments) or(f types.AilmentFlags) {
	d := &a.AilmentFlags
	d.DisallowMove = d.DisallowMove || f.DisallowMove
	d.DisallowSprint = d.DisallowSprint || f.DisallowSprint
	d.DisallowWalk = d.DisallowWalk || f.DisallowWalk
	d.DisallowJump = d.DisallowJump || f.DisallowJump
	d.DisallowDash = d.DisallowDash || f.DisallowDash
	d.DisallowCrouch = d.DisallowCrouch || f.DisallowCrouch
	d.DisallowCrawl = d.DisallowCrawl || f.DisallowCrawl
	d.DisallowAttack = d.DisallowAttack || f.DisallowAttack
	d.DisallowUseSkill = d.DisallowUseSkill || f.DisallowUseSkill
	d.DisallowUseItem = d.DisallowUseItem || f.DisallowUseItem
	d.FreezeAnimation = d.FreezeAnimation || f.FreezeAnimation
}

// aggregateAilments folds sources in order into a fresh Ailments. With
// earlyExit it stops as soon as every flag is set.
func aggregateAilments(sources []*buff.Calculated, earlyExit bool) (Ailments, int) {
	var a Ailments
	for i, b := range sources {
		a.apply(b)
		if earlyExit && a.All() {
			return a, i + 1
		}
	}
	return a, len(sources)
}
