// Package types defines the shared data structures for the statcore engine.
// This package contains only type definitions, no logic, no methods.
package types

// Intent is the parsed representation of a console command.
type Intent struct {
	Verb    string
	Object  string            // optional
	Target  string            // optional
	Options map[string]string // keyword options: level, seed, version, hand, amount
}

// Event is emitted by the engine after a derived-state change.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single console step.
type Result struct {
	Events []Event
	Output []string
}

// GameDef holds content-wide metadata.
type GameDef struct {
	Title            string
	Author           string
	Version          string
	DefaultWeapon    string         // item id used when a character holds no weapon
	StatBattleScores CharacterStats // per-point battle score weight of each stat
}

// StatID indexes CharacterStats.
type StatID uint8

const (
	StatHP StatID = iota
	StatHPRecovery
	StatHPLeechRate
	StatMP
	StatMPRecovery
	StatMPLeechRate
	StatStamina
	StatStaminaRecovery
	StatStaminaLeechRate
	StatFood
	StatWater
	StatAccuracy
	StatEvasion
	StatCriticalRate
	StatCriticalDamageRate
	StatBlockRate
	StatBlockDamageRate
	StatMoveSpeed
	StatAttackSpeed
	StatWeightLimit
	StatSlotLimit
	StatGoldRate
	StatExpRate
	StatItemDropRate
	StatJumpHeight
	StatHeadDamageAbsorbs
	StatBodyDamageAbsorbs
	StatFallDamageAbsorbs
	StatGravityRate
	StatCount
)

// StatNames are the content-facing names of each stat, in StatID order.
var StatNames = [StatCount]string{
	"hp", "hp_recovery", "hp_leech_rate",
	"mp", "mp_recovery", "mp_leech_rate",
	"stamina", "stamina_recovery", "stamina_leech_rate",
	"food", "water",
	"accuracy", "evasion",
	"critical_rate", "critical_damage_rate",
	"block_rate", "block_damage_rate",
	"move_speed", "attack_speed",
	"weight_limit", "slot_limit",
	"gold_rate", "exp_rate", "item_drop_rate",
	"jump_height",
	"head_damage_absorbs", "body_damage_absorbs", "fall_damage_absorbs",
	"gravity_rate",
}

// CharacterStats is a flat block of scalar stats indexed by StatID.
type CharacterStats [StatCount]float64

// MinMax is a damage range.
type MinMax struct {
	Min float64
	Max float64
}

// IncrementalFloat evaluates to Base + PerLevel*(level-1).
type IncrementalFloat struct {
	Base     float64
	PerLevel float64
}

// IncrementalInt evaluates to Base + PerLevel*(level-1), truncated.
type IncrementalInt struct {
	Base     float64
	PerLevel float64
}

// IncrementalMinMax evaluates both ends of a range per level.
type IncrementalMinMax struct {
	Base     MinMax
	PerLevel MinMax
}

// IncrementalStats evaluates every stat per level.
type IncrementalStats struct {
	Base     CharacterStats
	PerLevel CharacterStats
}

// BonusDef is a level-scaled bonus block shared by items, buffs, sockets
// and equipment sets.
type BonusDef struct {
	Stats          IncrementalStats
	StatsRate      IncrementalStats
	Attributes     map[string]IncrementalFloat
	AttributesRate map[string]IncrementalFloat
	Resistances    map[string]IncrementalFloat
	Armors         map[string]IncrementalFloat
	ArmorsRate     map[string]IncrementalFloat
	Damages        map[string]IncrementalMinMax
	DamagesRate    map[string]IncrementalMinMax
	Skills         map[string]IncrementalInt
}

// AttributeDef is a primary attribute (strength, dexterity, ...).
type AttributeDef struct {
	ID          string
	Title       string
	BattleScore float64
	Stats       CharacterStats // granted per attribute point
}

// DamageElementDef is a damage element (physical, fire, ...).
type DamageElementDef struct {
	ID                    string
	Title                 string
	DamageBattleScore     float64
	ResistanceBattleScore float64
	ArmorBattleScore      float64
	MaxResistance         float64 // 0 = uncapped
}

// DamageInfo describes how a weapon delivers its damage.
type DamageInfo struct {
	Type         string // melee, missile, raycast, throwable
	Distance     float64
	FOV          float64
	MissileSpeed float64
}

// WeaponTypeDef groups weapons that share damage delivery.
type WeaponTypeDef struct {
	ID         string
	Title      string
	Equip      string // one_hand, two_hand, off_hand
	DamageInfo DamageInfo
}

// WeaponAbility is an ability granted by a weapon or socket enhancer.
type WeaponAbility struct {
	Key      string
	Title    string
	Cooldown float64
}

// ItemType classifies item definitions.
type ItemType uint8

const (
	ItemJunk ItemType = iota
	ItemArmor
	ItemWeapon
	ItemShield
	ItemPotion
	ItemAmmo
	ItemSocketEnhancer
	ItemPet
	ItemMount
)

// ItemDef is a static item definition.
type ItemDef struct {
	ID            string
	Title         string
	Type          ItemType
	Weight        float64
	MaxStack      int
	BattleScore   float64 // intrinsic contribution while equipped as a weapon
	EquipmentSet  string
	Bonus         BonusDef
	WeaponType    string
	DamageElement string
	Damage        IncrementalMinMax
	Abilities     []WeaponAbility
	SocketBonus   BonusDef // applied to the host item when used as an enhancer
	RandomBonus   RandomBonusDef
	Buff          *BuffDef // potions
}

// RandomFloatEntry is one rollable attribute, resistance or armor amount.
type RandomFloatEntry struct {
	ID        string
	Min       float64
	Max       float64
	ApplyRate float64
}

// RandomDamageEntry rolls both ends of a damage range.
type RandomDamageEntry struct {
	ID        string
	Min       MinMax // range the rolled minimum is drawn from
	Max       MinMax // range the rolled maximum is drawn from
	ApplyRate float64
}

// RandomSkillEntry rolls a skill level in [MinLevel, MaxLevel].
type RandomSkillEntry struct {
	ID        string
	MinLevel  int
	MaxLevel  int
	ApplyRate float64
}

// RandomAmount rolls one scalar stat.
type RandomAmount struct {
	Min       float64
	Max       float64
	ApplyRate float64
}

// RandomStats holds one roll per character stat.
type RandomStats [StatCount]RandomAmount

// RandomBonusDef describes the seeded random bonuses an item may roll.
type RandomBonusDef struct {
	MaxRandomStatsAmount int     // 0 = unlimited
	LevelScale           float64 // amount *= 1 + LevelScale*(level-1)
	Attributes           []RandomFloatEntry
	AttributesRate       []RandomFloatEntry
	Resistances          []RandomFloatEntry
	Armors               []RandomFloatEntry
	ArmorsRate           []RandomFloatEntry
	Damages              []RandomDamageEntry
	DamagesRate          []RandomDamageEntry
	Skills               []RandomSkillEntry
	Stats                RandomStats
	StatsRate            RandomStats
}

// AilmentPreset names a fixed bundle of restriction flags.
type AilmentPreset uint8

const (
	AilmentNone AilmentPreset = iota
	AilmentStun
	AilmentFreeze
	AilmentMute
)

// AilmentFlags are the explicit restrictions a buff applies when it has
// no named preset.
type AilmentFlags struct {
	DisallowMove     bool
	DisallowSprint   bool
	DisallowWalk     bool
	DisallowJump     bool
	DisallowDash     bool
	DisallowCrouch   bool
	DisallowCrawl    bool
	DisallowAttack   bool
	DisallowUseSkill bool
	DisallowUseItem  bool
	FreezeAnimation  bool
}

// BuffDef is the static definition of a buff or debuff.
type BuffDef struct {
	ID         string
	Duration   IncrementalFloat
	NoDuration bool

	RecoveryHP      IncrementalFloat
	RecoveryMP      IncrementalFloat
	RecoveryStamina IncrementalFloat
	RecoveryFood    IncrementalFloat
	RecoveryWater   IncrementalFloat

	BonusDef

	StatusEffectResistances map[string]IncrementalFloat
	BuffRemovals            map[string]IncrementalFloat

	RemoveOnAttackChance     IncrementalFloat
	RemoveOnAttackedChance   IncrementalFloat
	RemoveOnUseSkillChance   IncrementalFloat
	RemoveOnUseItemChance    IncrementalFloat
	RemoveOnPickupItemChance IncrementalFloat

	MaxStack   IncrementalInt
	Mount      string
	MountLevel IncrementalInt

	IsOverrideDamageInfo bool
	OverrideDamageInfo   DamageInfo
	IsOverrideSkills     bool
	OverrideSkills       map[string]IncrementalInt

	Ailment           AilmentPreset
	Disallow          AilmentFlags
	IsHide            bool
	IsRevealsHide     bool
	IsBlind           bool
	MuteFootstepSound bool
}

// SkillType classifies skills.
type SkillType uint8

const (
	SkillActive SkillType = iota
	SkillPassive
	SkillCraft
)

// SkillDef is a static skill definition.
type SkillDef struct {
	ID          string
	Title       string
	Type        SkillType
	BattleScore float64 // per skill level
	MaxLevel    int
	Buff        *BuffDef // self buff; always-on for passive skills
	Debuff      *BuffDef // applied to targets
	Summon      string
}

// StatusEffectDef is a named status effect (stun, poison, ...).
type StatusEffectDef struct {
	ID    string
	Title string
	Buff  *BuffDef
}

// GuildSkillDef is a guild-wide skill granting a buff.
type GuildSkillDef struct {
	ID    string
	Title string
	Buff  *BuffDef
}

// SummonDef is a summonable monster whose buff applies to its owner.
type SummonDef struct {
	ID    string
	Title string
	Buff  *BuffDef
}

// MountDef is a rideable mount whose buff applies to rider and passengers.
type MountDef struct {
	ID    string
	Title string
	Buff  *BuffDef
}

// SetEffect applies once Count pieces of a set are equipped.
type SetEffect struct {
	Count int
	Bonus BonusDef
}

// EquipmentSetDef groups items that grant bonuses together.
type EquipmentSetDef struct {
	ID      string
	Title   string
	Effects []SetEffect
}

// Patch is one late mutation applied to a built buff.
type Patch struct {
	Target string // e.g. "duration", "stats.hp", "ailment.disallow_move"
	Op     string // add, mul, set
	Value  any    // float64 or bool
}

// PluginDef applies patches to every buff whose definition id matches Buff
// ("*" matches all).
type PluginDef struct {
	ID      string
	Buff    string
	Patches []Patch
}
