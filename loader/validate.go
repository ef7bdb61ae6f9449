package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/statcore/engine/effects"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate checks the compiled defs for referential integrity. Dangling
// bonus keys are warnings since the aggregator ignores them; broken
// structural references are errors.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}
	if id := defs.Game.DefaultWeapon; id != "" {
		if item := defs.Items[id]; item == nil {
			ve.errorf("default weapon %q not found in defined items", id)
		} else if item.Type != types.ItemWeapon {
			ve.errorf("default weapon %q is not a weapon", id)
		}
	}

	for _, id := range stats.Keys(defs.DamageElements) {
		if defs.DamageElements[id].MaxResistance < 0 {
			ve.errorf("damage element %q has negative max_resistance", id)
		}
	}

	for _, id := range stats.Keys(defs.Items) {
		validateItem(defs, id, defs.Items[id], ve)
	}

	for _, id := range stats.Keys(defs.Skills) {
		s := defs.Skills[id]
		if s.Summon != "" && defs.Summons[s.Summon] == nil {
			ve.errorf("skill %q summons undefined summon %q", id, s.Summon)
		}
		if s.MaxLevel < 0 {
			ve.errorf("skill %q has negative max_level", id)
		}
		if s.Type == types.SkillPassive && s.Buff == nil {
			ve.warnf("passive skill %q has no buff", id)
		}
		validateBuff(defs, s.Buff, ve)
		validateBuff(defs, s.Debuff, ve)
	}
	for _, id := range stats.Keys(defs.StatusEffects) {
		validateBuff(defs, defs.StatusEffects[id].Buff, ve)
	}
	for _, id := range stats.Keys(defs.GuildSkills) {
		validateBuff(defs, defs.GuildSkills[id].Buff, ve)
	}
	for _, id := range stats.Keys(defs.Summons) {
		validateBuff(defs, defs.Summons[id].Buff, ve)
	}
	for _, id := range stats.Keys(defs.Mounts) {
		validateBuff(defs, defs.Mounts[id].Buff, ve)
	}

	for _, id := range stats.Keys(defs.EquipmentSets) {
		for i, eff := range defs.EquipmentSets[id].Effects {
			if eff.Count < 1 {
				ve.errorf("equipment set %q effect %d needs count >= 1", id, i+1)
			}
			validateBonus(defs, "equipment set "+id, eff.Bonus, ve)
		}
	}

	validatePlugins(defs, ve)

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateItem(defs *state.Defs, id string, item *types.ItemDef, ve *ValidationError) {
	if item.WeaponType != "" && defs.WeaponTypes[item.WeaponType] == nil {
		ve.errorf("item %q references undefined weapon type %q", id, item.WeaponType)
	}
	if item.DamageElement != "" && defs.DamageElements[item.DamageElement] == nil {
		ve.errorf("item %q references undefined damage element %q", id, item.DamageElement)
	}
	if item.EquipmentSet != "" && defs.EquipmentSets[item.EquipmentSet] == nil {
		ve.errorf("item %q references undefined equipment set %q", id, item.EquipmentSet)
	}
	if item.MaxStack < 0 {
		ve.errorf("item %q has negative max_stack", id)
	}
	for i, ab := range item.Abilities {
		if ab.Key == "" {
			ve.errorf("item %q ability %d has no key", id, i+1)
		}
	}
	if item.Type == types.ItemPotion && item.Buff == nil {
		ve.warnf("potion %q has no buff", id)
	}
	validateBonus(defs, "item "+id, item.Bonus, ve)
	validateBonus(defs, "item "+id+" socket", item.SocketBonus, ve)
	validateRandom(defs, id, item.RandomBonus, ve)
	validateBuff(defs, item.Buff, ve)
}

func validateRandom(defs *state.Defs, id string, r types.RandomBonusDef, ve *ValidationError) {
	if r.MaxRandomStatsAmount < 0 {
		ve.errorf("item %q has negative random max_amount", id)
	}
	check := func(kind, entry string, lo, hi, rate float64) {
		if entry == "" {
			ve.errorf("item %q random %s entry has no id", id, kind)
		}
		if lo > hi {
			ve.errorf("item %q random %s %q has min > max", id, kind, entry)
		}
		if rate <= 0 || rate > 1 {
			ve.warnf("item %q random %s %q apply rate %v is outside (0, 1]", id, kind, entry, rate)
		}
	}
	for _, e := range r.Attributes {
		check("attribute", e.ID, e.Min, e.Max, e.ApplyRate)
		refAttribute(defs, "item "+id, e.ID, ve)
	}
	for _, e := range r.AttributesRate {
		check("attribute rate", e.ID, e.Min, e.Max, e.ApplyRate)
		refAttribute(defs, "item "+id, e.ID, ve)
	}
	for _, list := range [][]types.RandomFloatEntry{r.Resistances, r.Armors, r.ArmorsRate} {
		for _, e := range list {
			check("element", e.ID, e.Min, e.Max, e.ApplyRate)
			refElement(defs, "item "+id, e.ID, ve)
		}
	}
	for _, list := range [][]types.RandomDamageEntry{r.Damages, r.DamagesRate} {
		for _, e := range list {
			check("damage", e.ID, e.Min.Min, e.Max.Max, e.ApplyRate)
			refElement(defs, "item "+id, e.ID, ve)
		}
	}
	for _, e := range r.Skills {
		check("skill", e.ID, float64(e.MinLevel), float64(e.MaxLevel), e.ApplyRate)
		refSkill(defs, "item "+id, e.ID, ve)
	}
}

func validateBuff(defs *state.Defs, b *types.BuffDef, ve *ValidationError) {
	if b == nil {
		return
	}
	if b.Mount != "" && defs.Mounts[b.Mount] == nil {
		ve.errorf("buff %q references undefined mount %q", b.ID, b.Mount)
	}
	validateBonus(defs, "buff "+b.ID, b.BonusDef, ve)
	for id := range b.StatusEffectResistances {
		if defs.StatusEffects[id] == nil {
			ve.warnf("buff %q resists undefined status effect %q", b.ID, id)
		}
	}
	for id := range b.OverrideSkills {
		refSkill(defs, "buff "+b.ID, id, ve)
	}
}

func validateBonus(defs *state.Defs, owner string, b types.BonusDef, ve *ValidationError) {
	for _, m := range []map[string]types.IncrementalFloat{b.Attributes, b.AttributesRate} {
		for _, id := range stats.Keys(m) {
			refAttribute(defs, owner, id, ve)
		}
	}
	for _, m := range []map[string]types.IncrementalFloat{b.Resistances, b.Armors, b.ArmorsRate} {
		for _, id := range stats.Keys(m) {
			refElement(defs, owner, id, ve)
		}
	}
	for _, m := range []map[string]types.IncrementalMinMax{b.Damages, b.DamagesRate} {
		for _, id := range stats.Keys(m) {
			refElement(defs, owner, id, ve)
		}
	}
	for _, id := range stats.Keys(b.Skills) {
		refSkill(defs, owner, id, ve)
	}
}

func refAttribute(defs *state.Defs, owner, id string, ve *ValidationError) {
	if defs.Attributes[id] == nil {
		ve.warnf("%s references undefined attribute %q", owner, id)
	}
}

func refElement(defs *state.Defs, owner, id string, ve *ValidationError) {
	if defs.DamageElements[id] == nil {
		ve.warnf("%s references undefined damage element %q", owner, id)
	}
}

func refSkill(defs *state.Defs, owner, id string, ve *ValidationError) {
	if defs.Skills[id] == nil {
		ve.warnf("%s references undefined skill %q", owner, id)
	}
}

func validatePlugins(defs *state.Defs, ve *ValidationError) {
	buffIDs := map[string]bool{}
	collect := func(b *types.BuffDef) {
		if b != nil {
			buffIDs[b.ID] = true
		}
	}
	for _, it := range defs.Items {
		collect(it.Buff)
	}
	for _, s := range defs.Skills {
		collect(s.Buff)
		collect(s.Debuff)
	}
	for _, s := range defs.StatusEffects {
		collect(s.Buff)
	}
	for _, s := range defs.GuildSkills {
		collect(s.Buff)
	}
	for _, s := range defs.Summons {
		collect(s.Buff)
	}
	for _, m := range defs.Mounts {
		collect(m.Buff)
	}

	for _, p := range defs.Plugins {
		switch {
		case p.Buff == "":
			ve.errorf("plugin %q has no buff target", p.ID)
		case p.Buff != "*" && !buffIDs[p.Buff]:
			ve.warnf("plugin %q targets undefined buff %q", p.ID, p.Buff)
		}
		for i, patch := range p.Patches {
			if err := effects.Validate(patch); err != nil {
				ve.errorf("plugin %q patch %d (%s %s): %v", p.ID, i+1, patch.Op, patch.Target, err)
			}
		}
	}
}
