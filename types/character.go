package types

// BuffKind is the definition table a CharacterBuff refers to.
type BuffKind uint8

const (
	BuffSkill BuffKind = iota
	BuffSkillDebuff
	BuffPotion
	BuffGuildSkill
	BuffStatusEffect
)

// BuffKindNames are the content-facing names of each BuffKind.
var BuffKindNames = map[BuffKind]string{
	BuffSkill:        "skill",
	BuffSkillDebuff:  "skill_debuff",
	BuffPotion:       "potion",
	BuffGuildSkill:   "guild_skill",
	BuffStatusEffect: "status_effect",
}

// SummonKind is where a summon came from.
type SummonKind uint8

const (
	SummonSkill SummonKind = iota
	SummonPet
	SummonCustom
)

// BuffIdentity decides whether a cached buff snapshot can be reused.
type BuffIdentity struct {
	Kind   BuffKind
	DataID string
	Level  int
}

// ItemIdentity decides whether a cached item snapshot can be reused.
// It is also the complete persisted form of an item's random bonus.
type ItemIdentity struct {
	DataID     string
	Level      int
	RandomSeed int32
	Version    uint8
}

// SummonIdentity decides whether a cached summon snapshot can be reused.
type SummonIdentity struct {
	Kind   SummonKind
	DataID string
	Level  int
}

// CharacterBuff is an active buff instance on a character.
type CharacterBuff struct {
	ID     string // instance id
	Kind   BuffKind
	DataID string
	Level  int
}

// CharacterItem is an item instance owned by a character.
type CharacterItem struct {
	ID         string // instance id
	DataID     string
	Level      int
	Amount     int
	RandomSeed int32
	Version    uint8
	Sockets    []string // socket enhancer item ids, in socket order
}

// CharacterSummon is an active summon instance.
type CharacterSummon struct {
	ID     string
	Kind   SummonKind
	DataID string
	Level  int
}

// CharacterMount is the mount a character rides or sits on as passenger.
type CharacterMount struct {
	DataID    string
	Level     int
	Passenger bool
}

// EquipWeapons holds the items in each hand; nil means empty.
type EquipWeapons struct {
	RightHand *CharacterItem
	LeftHand  *CharacterItem
}

// SummonKindNames are the content-facing names of each SummonKind.
var SummonKindNames = map[SummonKind]string{
	SummonSkill:  "skill",
	SummonPet:    "pet",
	SummonCustom: "custom",
}
