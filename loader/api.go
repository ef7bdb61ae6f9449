package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// Definition kinds, one per curried constructor.
const (
	kindAttribute     = "attribute"
	kindDamageElement = "damage_element"
	kindWeaponType    = "weapon_type"
	kindItem          = "item"
	kindSkill         = "skill"
	kindStatusEffect  = "status_effect"
	kindGuildSkill    = "guild_skill"
	kindSummon        = "summon"
	kindMount         = "mount"
	kindEquipmentSet  = "equipment_set"
	kindPlugin        = "plugin"
)

// constructors maps each Lua global to the kind it records.
var constructors = map[string]string{
	"Attribute":     kindAttribute,
	"DamageElement": kindDamageElement,
	"WeaponType":    kindWeaponType,
	"Item":          kindItem,
	"Skill":         kindSkill,
	"StatusEffect":  kindStatusEffect,
	"GuildSkill":    kindGuildSkill,
	"Summon":        kindSummon,
	"Mount":         kindMount,
	"EquipmentSet":  kindEquipmentSet,
	"Plugin":        kindPlugin,
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerValueHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Kind "id" { ... }: curried, Kind("id") returns a function taking the table.
	for name, kind := range constructors {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				coll.add(kind, id, L.CheckTable(1))
				return 0
			}))
			return 1
		}))
	}
}

func registerValueHelpers(L *lua.LState) {
	// Lv(base, per_level) builds a level-scaled value.
	L.SetGlobal("Lv", L.NewFunction(func(L *lua.LState) int {
		base := L.CheckNumber(1)
		perLevel := L.OptNumber(2, 0)
		tbl := L.NewTable()
		tbl.RawSetString("base", base)
		tbl.RawSetString("per_level", perLevel)
		L.Push(tbl)
		return 1
	}))

	// Range(min, max) builds a damage range.
	L.SetGlobal("Range", L.NewFunction(func(L *lua.LState) int {
		lo := L.CheckNumber(1)
		hi := L.OptNumber(2, lo)
		tbl := L.NewTable()
		tbl.RawSetString("min", lo)
		tbl.RawSetString("max", hi)
		L.Push(tbl)
		return 1
	}))

	// Roll(id, min, max, apply_rate) builds one random bonus entry.
	L.SetGlobal("Roll", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("id", lua.LString(id))
		tbl.RawSetString("min", L.CheckNumber(2))
		tbl.RawSetString("max", L.CheckNumber(3))
		tbl.RawSetString("rate", L.OptNumber(4, 1))
		L.Push(tbl)
		return 1
	}))

	// Patch("target", "op", value)
	L.SetGlobal("Patch", L.NewFunction(func(L *lua.LState) int {
		target := L.CheckString(1)
		op := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("target", lua.LString(target))
		tbl.RawSetString("op", lua.LString(op))
		tbl.RawSetString("value", L.Get(3))
		L.Push(tbl)
		return 1
	}))
}
