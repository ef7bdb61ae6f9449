// Package state holds the immutable content definitions and the lookup
// functions the engine resolves identities through. Every lookup tolerates
// unknown ids by returning nil.
package state

import "github.com/nathoo/statcore/types"

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game           types.GameDef
	Attributes     map[string]*types.AttributeDef
	DamageElements map[string]*types.DamageElementDef
	WeaponTypes    map[string]*types.WeaponTypeDef
	Items          map[string]*types.ItemDef
	Skills         map[string]*types.SkillDef
	StatusEffects  map[string]*types.StatusEffectDef
	GuildSkills    map[string]*types.GuildSkillDef
	Summons        map[string]*types.SummonDef
	Mounts         map[string]*types.MountDef
	EquipmentSets  map[string]*types.EquipmentSetDef
	Plugins        []types.PluginDef
}

// NewDefs returns an empty Defs with allocated maps.
func NewDefs() *Defs {
	return &Defs{
		Attributes:     map[string]*types.AttributeDef{},
		DamageElements: map[string]*types.DamageElementDef{},
		WeaponTypes:    map[string]*types.WeaponTypeDef{},
		Items:          map[string]*types.ItemDef{},
		Skills:         map[string]*types.SkillDef{},
		StatusEffects:  map[string]*types.StatusEffectDef{},
		GuildSkills:    map[string]*types.GuildSkillDef{},
		Summons:        map[string]*types.SummonDef{},
		Mounts:         map[string]*types.MountDef{},
		EquipmentSets:  map[string]*types.EquipmentSetDef{},
	}
}

// Item returns the item definition or nil.
func Item(defs *Defs, id string) *types.ItemDef {
	return defs.Items[id]
}

// Skill returns the skill definition or nil.
func Skill(defs *Defs, id string) *types.SkillDef {
	return defs.Skills[id]
}

// Buff returns the buff definition a CharacterBuff of kind refers to, or nil.
func Buff(defs *Defs, kind types.BuffKind, id string) *types.BuffDef {
	switch kind {
	case types.BuffSkill:
		if s := defs.Skills[id]; s != nil {
			return s.Buff
		}
	case types.BuffSkillDebuff:
		if s := defs.Skills[id]; s != nil {
			return s.Debuff
		}
	case types.BuffPotion:
		if it := defs.Items[id]; it != nil {
			return it.Buff
		}
	case types.BuffGuildSkill:
		if g := defs.GuildSkills[id]; g != nil {
			return g.Buff
		}
	case types.BuffStatusEffect:
		if se := defs.StatusEffects[id]; se != nil {
			return se.Buff
		}
	}
	return nil
}

// SummonBuff returns the owner buff of a summon, or nil.
func SummonBuff(defs *Defs, id string) *types.BuffDef {
	if s := defs.Summons[id]; s != nil {
		return s.Buff
	}
	return nil
}

// MountBuff returns the rider buff of a mount, or nil.
func MountBuff(defs *Defs, id string) *types.BuffDef {
	if m := defs.Mounts[id]; m != nil {
		return m.Buff
	}
	return nil
}

// PassiveBuff returns the always-on buff of a passive skill, or nil.
func PassiveBuff(defs *Defs, id string) *types.BuffDef {
	if s := defs.Skills[id]; s != nil && s.Type == types.SkillPassive {
		return s.Buff
	}
	return nil
}

// WeaponType returns the weapon type of an item, or nil.
func WeaponType(defs *Defs, item *types.ItemDef) *types.WeaponTypeDef {
	if item == nil {
		return nil
	}
	return defs.WeaponTypes[item.WeaponType]
}

// DefaultWeapon returns the content's unarmed stand-in, or nil.
func DefaultWeapon(defs *Defs) *types.ItemDef {
	if defs.Game.DefaultWeapon == "" {
		return nil
	}
	return defs.Items[defs.Game.DefaultWeapon]
}
