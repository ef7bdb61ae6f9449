package derived

import (
	"github.com/google/uuid"

	"github.com/nathoo/statcore/types"
)

// Character is the read-only view of a character the aggregator needs.
// Returned slices and maps must not be mutated by the aggregator's caller
// while a build is running.
type Character interface {
	ID() uuid.UUID
	Level() int
	BaseStats() types.CharacterStats
	BaseAttributes() map[string]float64
	Skills() map[string]int // skill id -> level
	Buffs() []types.CharacterBuff
	EquipItems() []types.CharacterItem
	Weapons() types.EquipWeapons
	NonEquipItems() []types.CharacterItem
	Summons() []types.CharacterSummon
	Mount() (types.CharacterMount, bool)
}

// MonsterWeaponer is implemented by characters that fight with a built-in
// weapon when both hands are empty.
type MonsterWeaponer interface {
	MonsterWeapon() (*types.ItemDef, bool)
}
