package derived

import "github.com/nathoo/statcore/types"

// Hand is the resolved weapon of one hand.
type Hand struct {
	Available    bool
	IsDefault    bool // synthesized stand-in, not an equipped item
	Weapon       *types.ItemDef
	Level        int
	DamageInfo   types.DamageInfo
	Damages      map[string]types.MinMax
	Abilities    []types.WeaponAbility
	AbilityIndex map[string]int
}

// Ability returns the ability with key, if the hand has one.
func (h Hand) Ability(key string) (types.WeaponAbility, bool) {
	i, ok := h.AbilityIndex[key]
	if !ok {
		return types.WeaponAbility{}, false
	}
	return h.Abilities[i], true
}

// Snapshot is the immutable derived state of one character. Callers must
// not mutate its maps.
type Snapshot struct {
	Stats                   types.CharacterStats
	Attributes              map[string]float64
	Resistances             map[string]float64
	Armors                  map[string]float64
	StatusEffectResistances map[string]float64
	BuffRemovals            map[string]float64
	Skills                  map[string]int
	EquipmentSets           map[string]int // set id -> equipped piece count

	RightHand Hand
	LeftHand  Hand

	TotalWeight  float64
	LimitWeight  float64
	TotalSlot    int
	LimitSlot    int
	IsOverweight bool
	IsOverSlot   bool

	Ailments    Ailments
	BattleScore int
}
