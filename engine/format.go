package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/statcore/engine/character"
	"github.com/nathoo/statcore/engine/derived"
	"github.com/nathoo/statcore/engine/itembuff"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func floatList(m map[string]float64) string {
	parts := make([]string, 0, len(m))
	for _, k := range stats.Keys(m) {
		if m[k] != 0 {
			parts = append(parts, k+" "+num(m[k]))
		}
	}
	return strings.Join(parts, ", ")
}

func rangeList(m map[string]types.MinMax) string {
	parts := make([]string, 0, len(m))
	for _, k := range stats.Keys(m) {
		parts = append(parts, fmt.Sprintf("%s %s-%s", k, num(m[k].Min), num(m[k].Max)))
	}
	return strings.Join(parts, ", ")
}

func statList(s types.CharacterStats) string {
	var parts []string
	for i, v := range s {
		if v != 0 {
			parts = append(parts, stats.Name(types.StatID(i))+" "+num(v))
		}
	}
	return strings.Join(parts, ", ")
}

func appendLine(out []string, label, body string) []string {
	if body == "" {
		return out
	}
	return append(out, label+": "+body)
}

// FormatBonus renders the non-zero entries of b, one category per line.
func FormatBonus(b stats.Bonus) []string {
	var out []string
	out = appendLine(out, "Stats", statList(b.Stats))
	out = appendLine(out, "Stats rate", statList(b.StatsRate))
	out = appendLine(out, "Attributes", floatList(b.Attributes))
	out = appendLine(out, "Attributes rate", floatList(b.AttributesRate))
	out = appendLine(out, "Resistances", floatList(b.Resistances))
	out = appendLine(out, "Armors", floatList(b.Armors))
	out = appendLine(out, "Armors rate", floatList(b.ArmorsRate))
	out = appendLine(out, "Damages", rangeList(b.Damages))
	out = appendLine(out, "Damages rate", rangeList(b.DamagesRate))
	skills := make([]string, 0, len(b.Skills))
	for _, k := range stats.Keys(b.Skills) {
		skills = append(skills, fmt.Sprintf("%s +%d", k, b.Skills[k]))
	}
	out = appendLine(out, "Skills", strings.Join(skills, ", "))
	return out
}

// FormatRoll renders the random bonus an item instance rolls, rebuilt from
// its identity tuple alone.
func FormatRoll(def *types.ItemDef, it types.CharacterItem) []string {
	c := itembuff.Build(def, it.Level, it.RandomSeed, it.Version)
	head := fmt.Sprintf("%s level %d seed %d version %d", title(def.Title, def.ID), it.Level, it.RandomSeed, it.Version)
	if !itembuff.Equippable(def.Type) {
		return []string{head, "Not equipment; nothing to roll."}
	}
	capNote := ""
	if c.Random.CapReached {
		capNote = ", cap reached"
	}
	out := []string{fmt.Sprintf("%s: %d random bonus(es)%s", head, c.Random.AppliedCount, capNote)}
	lines := FormatBonus(c.Random.Bonus)
	if len(lines) == 0 {
		lines = []string{"No random bonus."}
	}
	return append(out, lines...)
}

func formatHand(label string, h derived.Hand) string {
	if !h.Available {
		return label + ": empty"
	}
	name := title(h.Weapon.Title, h.Weapon.ID)
	if h.IsDefault {
		name += " (default)"
	}
	keys := make([]string, len(h.Abilities))
	for i, ab := range h.Abilities {
		keys[i] = ab.Key
	}
	s := fmt.Sprintf("%s: %s lv%d %s", label, name, h.Level, rangeList(h.Damages))
	if h.DamageInfo.Type != "" {
		s += fmt.Sprintf(" (%s, %sm)", h.DamageInfo.Type, num(h.DamageInfo.Distance))
	}
	if len(keys) > 0 {
		s += " [" + strings.Join(keys, ", ") + "]"
	}
	return s
}

func formatSheet(defs *state.Defs, c *character.Sheet, s *derived.Snapshot) []string {
	out := []string{fmt.Sprintf("%s, level %d, battle score %d", c.Name(), c.Level(), s.BattleScore)}
	out = appendLine(out, "Stats", statList(s.Stats))
	out = appendLine(out, "Attributes", floatList(s.Attributes))
	out = appendLine(out, "Resistances", floatList(s.Resistances))
	out = appendLine(out, "Armors", floatList(s.Armors))
	out = append(out, formatHand("Right hand", s.RightHand), formatHand("Left hand", s.LeftHand))

	skills := make([]string, 0, len(s.Skills))
	for _, k := range stats.Keys(s.Skills) {
		skills = append(skills, fmt.Sprintf("%s %d", k, s.Skills[k]))
	}
	out = appendLine(out, "Skills", strings.Join(skills, ", "))

	sets := make([]string, 0, len(s.EquipmentSets))
	for _, k := range stats.Keys(s.EquipmentSets) {
		name := k
		if def := defs.EquipmentSets[k]; def != nil && def.Title != "" {
			name = def.Title
		}
		sets = append(sets, fmt.Sprintf("%s (%d)", name, s.EquipmentSets[k]))
	}
	out = appendLine(out, "Sets", strings.Join(sets, ", "))

	weight := fmt.Sprintf("Weight: %s/%s", num(s.TotalWeight), num(s.LimitWeight))
	if s.IsOverweight {
		weight += " (overweight)"
	}
	slots := fmt.Sprintf("Slots: %d/%d", s.TotalSlot, s.LimitSlot)
	if s.IsOverSlot {
		slots += " (over limit)"
	}
	out = append(out, weight, slots)
	return append(out, formatAilments(s.Ailments)...)
}

func formatAilments(a derived.Ailments) []string {
	active := a.Active()
	if len(active) == 0 {
		return []string{"No ailments."}
	}
	return []string{"Ailments: " + strings.Join(active, ", ")}
}
