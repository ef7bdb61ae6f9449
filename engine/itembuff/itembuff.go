// Package itembuff combines an equipment item's static per-level bonus with
// its seeded random bonus.
package itembuff

import (
	"github.com/nathoo/statcore/engine/bonus"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// Calculated is the merged bonus of one item instance.
type Calculated struct {
	Identity types.ItemIdentity
	Item     *types.ItemDef // nil when unresolved
	Random   bonus.Calculated
	stats.Bonus
}

// Equippable reports whether items of type t contribute while equipped.
func Equippable(t types.ItemType) bool {
	switch t {
	case types.ItemArmor, types.ItemWeapon, types.ItemShield:
		return true
	}
	return false
}

// Build merges the static and random bonus of item. nil or non-equippable
// items yield a zero snapshot.
func Build(item *types.ItemDef, level int, seed int32, version uint8) *Calculated {
	c := &Calculated{
		Identity: identity(item, level, seed, version),
		Item:     item,
		Random:   bonus.Calculated{Bonus: stats.NewBonus()},
		Bonus:    stats.NewBonus(),
	}
	if item == nil || !Equippable(item.Type) {
		return c
	}
	c.Random = bonus.Build(item, level, seed, version)
	c.Bonus.Merge(stats.At(item.Bonus, level))
	c.Bonus.Merge(c.Random.Bonus)
	return c
}

func identity(item *types.ItemDef, level int, seed int32, version uint8) types.ItemIdentity {
	id := types.ItemIdentity{Level: level, RandomSeed: seed, Version: version}
	if item != nil {
		id.DataID = item.ID
	}
	return id
}
