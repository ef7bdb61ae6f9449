// Package loader loads Lua content into Go definition structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// rawDef holds one constructor call before compilation.
type rawDef struct {
	kind  string
	id    string
	table *lua.LTable
	order int
}

var itemTypes = map[string]types.ItemType{
	"":                types.ItemJunk,
	"junk":            types.ItemJunk,
	"armor":           types.ItemArmor,
	"weapon":          types.ItemWeapon,
	"shield":          types.ItemShield,
	"potion":          types.ItemPotion,
	"ammo":            types.ItemAmmo,
	"socket_enhancer": types.ItemSocketEnhancer,
	"pet":             types.ItemPet,
	"mount":           types.ItemMount,
}

var skillTypes = map[string]types.SkillType{
	"":        types.SkillActive,
	"active":  types.SkillActive,
	"passive": types.SkillPassive,
	"craft":   types.SkillCraft,
}

var ailmentPresets = map[string]types.AilmentPreset{
	"":       types.AilmentNone,
	"none":   types.AilmentNone,
	"stun":   types.AilmentStun,
	"freeze": types.AilmentFreeze,
	"mute":   types.AilmentMute,
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or false if missing.
func getBool(tbl *lua.LTable, key string) bool {
	b, ok := tbl.RawGetString(key).(lua.LBool)
	return ok && bool(b)
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// forEachString calls fn for every string-keyed field of tbl in key order.
func forEachString(tbl *lua.LTable, fn func(key string, v lua.LValue) error) error {
	if tbl == nil {
		return nil
	}
	var keys []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			keys = append(keys, string(ks))
		}
	})
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, tbl.RawGetString(k)); err != nil {
			return err
		}
	}
	return nil
}

// forEachIndex calls fn for every table element of the array part of tbl.
func forEachIndex(tbl *lua.LTable, fn func(i int, t *lua.LTable) error) error {
	if tbl == nil {
		return nil
	}
	for i := 1; i <= tbl.Len(); i++ {
		t, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return fmt.Errorf("entry %d is not a table", i)
		}
		if err := fn(i, t); err != nil {
			return err
		}
	}
	return nil
}

// incFloat reads a level-scaled value: a number is the base, a table is
// {base, per_level} by name or position.
func incFloat(v lua.LValue) types.IncrementalFloat {
	switch val := v.(type) {
	case lua.LNumber:
		return types.IncrementalFloat{Base: float64(val)}
	case *lua.LTable:
		if n, ok := val.RawGetInt(1).(lua.LNumber); ok {
			out := types.IncrementalFloat{Base: float64(n)}
			if p, ok := val.RawGetInt(2).(lua.LNumber); ok {
				out.PerLevel = float64(p)
			}
			return out
		}
		return types.IncrementalFloat{Base: getNumber(val, "base"), PerLevel: getNumber(val, "per_level")}
	}
	return types.IncrementalFloat{}
}

func incInt(v lua.LValue) types.IncrementalInt {
	f := incFloat(v)
	return types.IncrementalInt{Base: f.Base, PerLevel: f.PerLevel}
}

// minMax reads {min, max} by name or position; a number sets both ends.
func minMax(v lua.LValue) types.MinMax {
	switch val := v.(type) {
	case lua.LNumber:
		return types.MinMax{Min: float64(val), Max: float64(val)}
	case *lua.LTable:
		if lo, ok := val.RawGetInt(1).(lua.LNumber); ok {
			out := types.MinMax{Min: float64(lo), Max: float64(lo)}
			if hi, ok := val.RawGetInt(2).(lua.LNumber); ok {
				out.Max = float64(hi)
			}
			return out
		}
		return types.MinMax{Min: getNumber(val, "min"), Max: getNumber(val, "max")}
	}
	return types.MinMax{}
}

// incMinMax reads {base = range, per_level = range}, or a bare range as the
// base.
func incMinMax(v lua.LValue) types.IncrementalMinMax {
	if tbl, ok := v.(*lua.LTable); ok {
		if base := tbl.RawGetString("base"); base != lua.LNil {
			return types.IncrementalMinMax{Base: minMax(base), PerLevel: minMax(tbl.RawGetString("per_level"))}
		}
	}
	return types.IncrementalMinMax{Base: minMax(v)}
}

func floatMap(tbl *lua.LTable) map[string]types.IncrementalFloat {
	if tbl == nil {
		return nil
	}
	m := map[string]types.IncrementalFloat{}
	_ = forEachString(tbl, func(k string, v lua.LValue) error {
		m[k] = incFloat(v)
		return nil
	})
	return m
}

func intMap(tbl *lua.LTable) map[string]types.IncrementalInt {
	if tbl == nil {
		return nil
	}
	m := map[string]types.IncrementalInt{}
	_ = forEachString(tbl, func(k string, v lua.LValue) error {
		m[k] = incInt(v)
		return nil
	})
	return m
}

func rangeMap(tbl *lua.LTable) map[string]types.IncrementalMinMax {
	if tbl == nil {
		return nil
	}
	m := map[string]types.IncrementalMinMax{}
	_ = forEachString(tbl, func(k string, v lua.LValue) error {
		m[k] = incMinMax(v)
		return nil
	})
	return m
}

func statID(name string) (types.StatID, error) {
	id, ok := stats.ID(name)
	if !ok {
		return 0, fmt.Errorf("unknown stat %q", name)
	}
	return id, nil
}

// flatStats reads { stat = number } into a stat block.
func flatStats(tbl *lua.LTable) (types.CharacterStats, error) {
	var s types.CharacterStats
	err := forEachString(tbl, func(k string, v lua.LValue) error {
		id, err := statID(k)
		if err != nil {
			return err
		}
		s[id] = incFloat(v).Base
		return nil
	})
	return s, err
}

// incStats reads { stat = level-scaled value } into an incremental block.
func incStats(tbl *lua.LTable) (types.IncrementalStats, error) {
	var s types.IncrementalStats
	err := forEachString(tbl, func(k string, v lua.LValue) error {
		id, err := statID(k)
		if err != nil {
			return err
		}
		f := incFloat(v)
		s.Base[id] = f.Base
		s.PerLevel[id] = f.PerLevel
		return nil
	})
	return s, err
}

// compileBonus reads the bonus fields of tbl. Buffs carry them inline, items
// and set effects nest them under a key.
func compileBonus(tbl *lua.LTable) (types.BonusDef, error) {
	var b types.BonusDef
	if tbl == nil {
		return b, nil
	}
	var err error
	if b.Stats, err = incStats(getTable(tbl, "stats")); err != nil {
		return b, err
	}
	if b.StatsRate, err = incStats(getTable(tbl, "stats_rate")); err != nil {
		return b, err
	}
	b.Attributes = floatMap(getTable(tbl, "attributes"))
	b.AttributesRate = floatMap(getTable(tbl, "attributes_rate"))
	b.Resistances = floatMap(getTable(tbl, "resistances"))
	b.Armors = floatMap(getTable(tbl, "armors"))
	b.ArmorsRate = floatMap(getTable(tbl, "armors_rate"))
	b.Damages = rangeMap(getTable(tbl, "damages"))
	b.DamagesRate = rangeMap(getTable(tbl, "damages_rate"))
	b.Skills = intMap(getTable(tbl, "skills"))
	return b, nil
}

var disallowFlags = map[string]func(f *types.AilmentFlags) *bool{
	"move":             func(f *types.AilmentFlags) *bool { return &f.DisallowMove },
	"sprint":           func(f *types.AilmentFlags) *bool { return &f.DisallowSprint },
	"walk":             func(f *types.AilmentFlags) *bool { return &f.DisallowWalk },
	"jump":             func(f *types.AilmentFlags) *bool { return &f.DisallowJump },
	"dash":             func(f *types.AilmentFlags) *bool { return &f.DisallowDash },
	"crouch":           func(f *types.AilmentFlags) *bool { return &f.DisallowCrouch },
	"crawl":            func(f *types.AilmentFlags) *bool { return &f.DisallowCrawl },
	"attack":           func(f *types.AilmentFlags) *bool { return &f.DisallowAttack },
	"use_skill":        func(f *types.AilmentFlags) *bool { return &f.DisallowUseSkill },
	"use_item":         func(f *types.AilmentFlags) *bool { return &f.DisallowUseItem },
	"freeze_animation": func(f *types.AilmentFlags) *bool { return &f.FreezeAnimation },
}

func compileDamageInfo(tbl *lua.LTable) types.DamageInfo {
	if tbl == nil {
		return types.DamageInfo{}
	}
	return types.DamageInfo{
		Type:         getString(tbl, "type"),
		Distance:     getNumber(tbl, "distance"),
		FOV:          getNumber(tbl, "fov"),
		MissileSpeed: getNumber(tbl, "missile_speed"),
	}
}

// compileBuff reads a buff table. A nil table yields a nil buff.
func compileBuff(tbl *lua.LTable, id string) (*types.BuffDef, error) {
	if tbl == nil {
		return nil, nil
	}
	bonus, err := compileBonus(tbl)
	if err != nil {
		return nil, err
	}
	b := &types.BuffDef{
		ID:         id,
		Duration:   incFloat(tbl.RawGetString("duration")),
		NoDuration: getBool(tbl, "no_duration"),

		RecoveryHP:      incFloat(tbl.RawGetString("recovery_hp")),
		RecoveryMP:      incFloat(tbl.RawGetString("recovery_mp")),
		RecoveryStamina: incFloat(tbl.RawGetString("recovery_stamina")),
		RecoveryFood:    incFloat(tbl.RawGetString("recovery_food")),
		RecoveryWater:   incFloat(tbl.RawGetString("recovery_water")),

		BonusDef: bonus,

		StatusEffectResistances: floatMap(getTable(tbl, "status_effect_resistances")),
		BuffRemovals:            floatMap(getTable(tbl, "buff_removals")),

		RemoveOnAttackChance:     incFloat(tbl.RawGetString("remove_on_attack_chance")),
		RemoveOnAttackedChance:   incFloat(tbl.RawGetString("remove_on_attacked_chance")),
		RemoveOnUseSkillChance:   incFloat(tbl.RawGetString("remove_on_use_skill_chance")),
		RemoveOnUseItemChance:    incFloat(tbl.RawGetString("remove_on_use_item_chance")),
		RemoveOnPickupItemChance: incFloat(tbl.RawGetString("remove_on_pickup_item_chance")),

		MaxStack:   incInt(tbl.RawGetString("max_stack")),
		Mount:      getString(tbl, "mount"),
		MountLevel: incInt(tbl.RawGetString("mount_level")),

		IsHide:            getBool(tbl, "hide"),
		IsRevealsHide:     getBool(tbl, "reveals_hide"),
		IsBlind:           getBool(tbl, "blind"),
		MuteFootstepSound: getBool(tbl, "mute_footstep_sound"),
	}
	if di := getTable(tbl, "override_damage_info"); di != nil {
		b.IsOverrideDamageInfo = true
		b.OverrideDamageInfo = compileDamageInfo(di)
	}
	if sk := getTable(tbl, "override_skills"); sk != nil {
		b.IsOverrideSkills = true
		b.OverrideSkills = intMap(sk)
	}

	preset, ok := ailmentPresets[getString(tbl, "ailment")]
	if !ok {
		return nil, fmt.Errorf("unknown ailment %q", getString(tbl, "ailment"))
	}
	b.Ailment = preset
	err = forEachString(getTable(tbl, "disallow"), func(k string, v lua.LValue) error {
		field, ok := disallowFlags[k]
		if !ok {
			return fmt.Errorf("unknown disallow flag %q", k)
		}
		*field(&b.Disallow) = lua.LVAsBool(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func randomFloats(tbl *lua.LTable) ([]types.RandomFloatEntry, error) {
	var out []types.RandomFloatEntry
	err := forEachIndex(tbl, func(_ int, t *lua.LTable) error {
		out = append(out, types.RandomFloatEntry{
			ID:        getString(t, "id"),
			Min:       getNumber(t, "min"),
			Max:       getNumber(t, "max"),
			ApplyRate: getNumber(t, "rate"),
		})
		return nil
	})
	return out, err
}

func randomDamages(tbl *lua.LTable) ([]types.RandomDamageEntry, error) {
	var out []types.RandomDamageEntry
	err := forEachIndex(tbl, func(_ int, t *lua.LTable) error {
		out = append(out, types.RandomDamageEntry{
			ID:        getString(t, "id"),
			Min:       minMax(t.RawGetString("min")),
			Max:       minMax(t.RawGetString("max")),
			ApplyRate: getNumber(t, "rate"),
		})
		return nil
	})
	return out, err
}

func randomSkills(tbl *lua.LTable) ([]types.RandomSkillEntry, error) {
	var out []types.RandomSkillEntry
	err := forEachIndex(tbl, func(_ int, t *lua.LTable) error {
		out = append(out, types.RandomSkillEntry{
			ID:        getString(t, "id"),
			MinLevel:  getInt(t, "min"),
			MaxLevel:  getInt(t, "max"),
			ApplyRate: getNumber(t, "rate"),
		})
		return nil
	})
	return out, err
}

func randomStats(tbl *lua.LTable) (types.RandomStats, error) {
	var s types.RandomStats
	err := forEachString(tbl, func(k string, v lua.LValue) error {
		id, err := statID(k)
		if err != nil {
			return err
		}
		t, ok := v.(*lua.LTable)
		if !ok {
			return fmt.Errorf("random stat %q must be a table", k)
		}
		s[id] = types.RandomAmount{Min: getNumber(t, "min"), Max: getNumber(t, "max"), ApplyRate: getNumber(t, "rate")}
		return nil
	})
	return s, err
}

func compileRandomBonus(tbl *lua.LTable) (types.RandomBonusDef, error) {
	var r types.RandomBonusDef
	if tbl == nil {
		return r, nil
	}
	r.MaxRandomStatsAmount = getInt(tbl, "max_amount")
	r.LevelScale = getNumber(tbl, "level_scale")

	floats := []struct {
		key string
		dst *[]types.RandomFloatEntry
	}{
		{"attributes", &r.Attributes},
		{"attributes_rate", &r.AttributesRate},
		{"resistances", &r.Resistances},
		{"armors", &r.Armors},
		{"armors_rate", &r.ArmorsRate},
	}
	for _, f := range floats {
		entries, err := randomFloats(getTable(tbl, f.key))
		if err != nil {
			return r, fmt.Errorf("random %s: %w", f.key, err)
		}
		*f.dst = entries
	}

	var err error
	if r.Damages, err = randomDamages(getTable(tbl, "damages")); err != nil {
		return r, fmt.Errorf("random damages: %w", err)
	}
	if r.DamagesRate, err = randomDamages(getTable(tbl, "damages_rate")); err != nil {
		return r, fmt.Errorf("random damages_rate: %w", err)
	}
	if r.Skills, err = randomSkills(getTable(tbl, "skills")); err != nil {
		return r, fmt.Errorf("random skills: %w", err)
	}
	if r.Stats, err = randomStats(getTable(tbl, "stats")); err != nil {
		return r, err
	}
	if r.StatsRate, err = randomStats(getTable(tbl, "stats_rate")); err != nil {
		return r, err
	}
	return r, nil
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	game, err := compileGame(coll.game)
	if err != nil {
		return nil, fmt.Errorf("compiling game: %w", err)
	}
	defs.Game = game

	seen := map[string]bool{}
	for _, raw := range coll.defs {
		key := raw.kind + ":" + raw.id
		if seen[key] {
			return nil, fmt.Errorf("duplicate %s %q", raw.kind, raw.id)
		}
		seen[key] = true
		if err := compileDef(defs, raw); err != nil {
			return nil, fmt.Errorf("compiling %s %s: %w", raw.kind, raw.id, err)
		}
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) (types.GameDef, error) {
	scores, err := flatStats(getTable(tbl, "stat_battle_scores"))
	if err != nil {
		return types.GameDef{}, err
	}
	return types.GameDef{
		Title:            getString(tbl, "title"),
		Author:           getString(tbl, "author"),
		Version:          getString(tbl, "version"),
		DefaultWeapon:    getString(tbl, "default_weapon"),
		StatBattleScores: scores,
	}, nil
}

func compileDef(defs *state.Defs, raw rawDef) error {
	tbl, id := raw.table, raw.id
	title := getString(tbl, "title")

	switch raw.kind {
	case kindAttribute:
		s, err := flatStats(getTable(tbl, "stats"))
		if err != nil {
			return err
		}
		defs.Attributes[id] = &types.AttributeDef{ID: id, Title: title, BattleScore: getNumber(tbl, "battle_score"), Stats: s}

	case kindDamageElement:
		defs.DamageElements[id] = &types.DamageElementDef{
			ID:                    id,
			Title:                 title,
			DamageBattleScore:     getNumber(tbl, "damage_battle_score"),
			ResistanceBattleScore: getNumber(tbl, "resistance_battle_score"),
			ArmorBattleScore:      getNumber(tbl, "armor_battle_score"),
			MaxResistance:         getNumber(tbl, "max_resistance"),
		}

	case kindWeaponType:
		defs.WeaponTypes[id] = &types.WeaponTypeDef{
			ID:         id,
			Title:      title,
			Equip:      getString(tbl, "equip"),
			DamageInfo: compileDamageInfo(getTable(tbl, "damage_info")),
		}

	case kindItem:
		item, err := compileItem(tbl, id)
		if err != nil {
			return err
		}
		defs.Items[id] = item

	case kindSkill:
		st, ok := skillTypes[getString(tbl, "type")]
		if !ok {
			return fmt.Errorf("unknown skill type %q", getString(tbl, "type"))
		}
		b, err := compileBuff(getTable(tbl, "buff"), "skill:"+id)
		if err != nil {
			return fmt.Errorf("buff: %w", err)
		}
		d, err := compileBuff(getTable(tbl, "debuff"), "skill_debuff:"+id)
		if err != nil {
			return fmt.Errorf("debuff: %w", err)
		}
		defs.Skills[id] = &types.SkillDef{
			ID:          id,
			Title:       title,
			Type:        st,
			BattleScore: getNumber(tbl, "battle_score"),
			MaxLevel:    getInt(tbl, "max_level"),
			Buff:        b,
			Debuff:      d,
			Summon:      getString(tbl, "summon"),
		}

	case kindStatusEffect:
		b, err := compileBuff(getTable(tbl, "buff"), "status_effect:"+id)
		if err != nil {
			return err
		}
		defs.StatusEffects[id] = &types.StatusEffectDef{ID: id, Title: title, Buff: b}

	case kindGuildSkill:
		b, err := compileBuff(getTable(tbl, "buff"), "guild_skill:"+id)
		if err != nil {
			return err
		}
		defs.GuildSkills[id] = &types.GuildSkillDef{ID: id, Title: title, Buff: b}

	case kindSummon:
		b, err := compileBuff(getTable(tbl, "buff"), "summon:"+id)
		if err != nil {
			return err
		}
		defs.Summons[id] = &types.SummonDef{ID: id, Title: title, Buff: b}

	case kindMount:
		b, err := compileBuff(getTable(tbl, "buff"), "mount:"+id)
		if err != nil {
			return err
		}
		defs.Mounts[id] = &types.MountDef{ID: id, Title: title, Buff: b}

	case kindEquipmentSet:
		set := &types.EquipmentSetDef{ID: id, Title: title}
		err := forEachIndex(getTable(tbl, "effects"), func(i int, t *lua.LTable) error {
			bonus, err := compileBonus(getTable(t, "bonus"))
			if err != nil {
				return fmt.Errorf("effect %d: %w", i, err)
			}
			set.Effects = append(set.Effects, types.SetEffect{Count: getInt(t, "count"), Bonus: bonus})
			return nil
		})
		if err != nil {
			return err
		}
		defs.EquipmentSets[id] = set

	case kindPlugin:
		p := types.PluginDef{ID: id, Buff: getString(tbl, "buff")}
		err := forEachIndex(getTable(tbl, "patches"), func(_ int, t *lua.LTable) error {
			p.Patches = append(p.Patches, types.Patch{
				Target: getString(t, "target"),
				Op:     getString(t, "op"),
				Value:  patchValue(t.RawGetString("value")),
			})
			return nil
		})
		if err != nil {
			return err
		}
		defs.Plugins = append(defs.Plugins, p)
	}
	return nil
}

func compileItem(tbl *lua.LTable, id string) (*types.ItemDef, error) {
	it, ok := itemTypes[getString(tbl, "type")]
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", getString(tbl, "type"))
	}
	bonus, err := compileBonus(getTable(tbl, "bonus"))
	if err != nil {
		return nil, fmt.Errorf("bonus: %w", err)
	}
	socket, err := compileBonus(getTable(tbl, "socket_bonus"))
	if err != nil {
		return nil, fmt.Errorf("socket_bonus: %w", err)
	}
	random, err := compileRandomBonus(getTable(tbl, "random_bonus"))
	if err != nil {
		return nil, err
	}
	b, err := compileBuff(getTable(tbl, "buff"), "item:"+id)
	if err != nil {
		return nil, fmt.Errorf("buff: %w", err)
	}

	item := &types.ItemDef{
		ID:            id,
		Title:         getString(tbl, "title"),
		Type:          it,
		Weight:        getNumber(tbl, "weight"),
		MaxStack:      getInt(tbl, "max_stack"),
		BattleScore:   getNumber(tbl, "battle_score"),
		EquipmentSet:  getString(tbl, "equipment_set"),
		Bonus:         bonus,
		WeaponType:    getString(tbl, "weapon_type"),
		DamageElement: getString(tbl, "damage_element"),
		Damage:        incMinMax(tbl.RawGetString("damage")),
		SocketBonus:   socket,
		RandomBonus:   random,
		Buff:          b,
	}
	err = forEachIndex(getTable(tbl, "abilities"), func(_ int, t *lua.LTable) error {
		item.Abilities = append(item.Abilities, types.WeaponAbility{
			Key:      getString(t, "key"),
			Title:    getString(t, "title"),
			Cooldown: getNumber(t, "cooldown"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("abilities: %w", err)
	}
	return item, nil
}

// patchValue keeps numbers as float64 and booleans as bool, the two value
// types patches accept.
func patchValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LNumber:
		return float64(val)
	case lua.LBool:
		return bool(val)
	case lua.LString:
		return string(val)
	}
	return nil
}

// sortedLuaFiles returns .lua files with game.lua first and the rest sorted
// alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
