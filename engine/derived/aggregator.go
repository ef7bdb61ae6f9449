// Package derived aggregates every buff, item, summon, passive skill and
// mount snapshot of a character into one immutable derived state.
package derived

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine/buff"
	"github.com/nathoo/statcore/engine/events"
	"github.com/nathoo/statcore/engine/rules"
	"github.com/nathoo/statcore/engine/snapshot"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// DefaultDamageElement is used for weapons that name no element.
const DefaultDamageElement = "physical"

// Unarmed is the last-resort weapon when neither hand holds one and the
// content defines no default weapon.
var Unarmed = &types.ItemDef{
	ID:     "unarmed",
	Title:  "Unarmed",
	Type:   types.ItemWeapon,
	Damage: types.IncrementalMinMax{Base: types.MinMax{Min: 1, Max: 1}},
}

// Options configures an Aggregator.
type Options struct {
	Rules             rules.Rules // nil uses rules.FromDefs
	Dispatcher        *events.Dispatcher
	Logger            *zap.Logger
	Metrics           *Metrics
	EarlyExitAilments bool
	LimitWeight       bool
	LimitSlot         bool
	IsLocal           func(uuid.UUID) bool // characters whose score changes are announced
}

// Aggregator builds derived snapshots. It holds no per-character state and
// is safe for concurrent use.
type Aggregator struct {
	defs    *state.Defs
	caches  *snapshot.Caches
	rules   rules.Rules
	events  *events.Dispatcher
	log     *zap.Logger
	metrics *Metrics
	opts    Options
}

// NewAggregator returns an aggregator reading definitions from defs and
// source snapshots from caches.
func NewAggregator(defs *state.Defs, caches *snapshot.Caches, opts Options) *Aggregator {
	a := &Aggregator{
		defs:    defs,
		caches:  caches,
		rules:   opts.Rules,
		events:  opts.Dispatcher,
		log:     opts.Logger,
		metrics: opts.Metrics,
		opts:    opts,
	}
	if a.rules == nil {
		a.rules = rules.FromDefs(defs)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// Build computes a fresh snapshot of c. prev is the snapshot it replaces,
// or nil on the first build.
func (a *Aggregator) Build(c Character, prev *Snapshot) *Snapshot {
	start := time.Now()
	defer a.metrics.observe(start)

	buffs := c.Buffs()
	buffCalcs := make([]*buff.Calculated, len(buffs))
	for i, b := range buffs {
		buffCalcs[i] = a.caches.Buff(b)
	}
	dmgOverride, skillOverride := overrides(buffCalcs)

	var mount *buff.Calculated
	if m, ok := c.Mount(); ok {
		mount = a.caches.Mount(m)
	}
	summons := c.Summons()
	summonCalcs := make([]*buff.Calculated, len(summons))
	for i, s := range summons {
		summonCalcs[i] = a.caches.Summon(s)
	}
	passives := a.passives(c.Skills())

	snap := &Snapshot{
		EquipmentSets:           map[string]int{},
		StatusEffectResistances: map[string]float64{},
		BuffRemovals:            map[string]float64{},
	}

	// Base aggregation.
	total := stats.NewBonus()
	equipped := equippedItems(c)
	for _, ci := range equipped {
		ic := a.caches.Item(ci)
		total.Merge(ic.Bonus)
		if ic.Item != nil && ic.Item.EquipmentSet != "" {
			snap.EquipmentSets[ic.Item.EquipmentSet]++
		}
		for _, sid := range ci.Sockets {
			if e := a.enhancer(sid); e != nil {
				total.Merge(stats.At(e.SocketBonus, 1))
			}
		}
	}
	a.applySets(&total, snap.EquipmentSets)

	sources := make([]*buff.Calculated, 0, len(buffCalcs)+len(summonCalcs)+len(passives)+1)
	if mount != nil {
		sources = append(sources, mount)
	}
	sources = append(sources, buffCalcs...)
	sources = append(sources, summonCalcs...)
	sources = append(sources, passives...)
	for _, b := range sources {
		total.Merge(b.Bonus)
		addFloats(snap.StatusEffectResistances, b.StatusEffectResistances)
		addFloats(snap.BuffRemovals, b.BuffRemovals)
	}

	snap.Attributes = stats.CloneFloats(c.BaseAttributes())
	addFloats(snap.Attributes, total.Attributes)
	for k, v := range snap.Attributes {
		snap.Attributes[k] = v * (1 + total.AttributesRate[k])
	}

	s := stats.Add(c.BaseStats(), total.Stats)
	for _, k := range stats.Keys(snap.Attributes) {
		if def := a.defs.Attributes[k]; def != nil {
			s = stats.Add(s, stats.Scale(def.Stats, snap.Attributes[k]))
		}
	}
	snap.Stats = stats.ApplyRate(s, total.StatsRate)

	snap.Resistances = stats.CloneFloats(total.Resistances)
	for k, v := range snap.Resistances {
		if el := a.defs.DamageElements[k]; el != nil && el.MaxResistance > 0 && v > el.MaxResistance {
			snap.Resistances[k] = el.MaxResistance
		}
	}
	snap.Armors = make(map[string]float64, len(total.Armors))
	for k, v := range total.Armors {
		snap.Armors[k] = v * (1 + total.ArmorsRate[k])
	}

	if skillOverride != nil {
		snap.Skills = stats.CloneInts(skillOverride.OverrideSkills)
	} else {
		snap.Skills = stats.CloneInts(c.Skills())
		for k, v := range total.Skills {
			snap.Skills[k] += v
		}
	}

	// Weight and slots.
	nonEquip := c.NonEquipItems()
	snap.TotalWeight = a.rules.TotalItemWeight(a.defs, equipped, nonEquip)
	snap.LimitWeight = a.rules.LimitItemWeight(snap.Stats)
	snap.TotalSlot = a.rules.TotalItemSlot(a.defs, nonEquip)
	snap.LimitSlot = a.rules.LimitItemSlot(snap.Stats)
	snap.IsOverweight = a.opts.LimitWeight && snap.TotalWeight > snap.LimitWeight
	snap.IsOverSlot = a.opts.LimitSlot && snap.TotalSlot > snap.LimitSlot

	var used int
	snap.Ailments, used = aggregateAilments(sources, a.opts.EarlyExitAilments)
	a.metrics.skipped(len(sources) - used)

	// Weapons.
	w := c.Weapons()
	snap.RightHand = a.equippedHand(w.RightHand, total, dmgOverride)
	snap.LeftHand = a.equippedHand(w.LeftHand, total, dmgOverride)
	if !snap.RightHand.Available && !snap.LeftHand.Available {
		snap.RightHand = a.hand(a.defaultWeapon(c), c.Level(), nil, total, dmgOverride)
		snap.RightHand.IsDefault = true
	}

	snap.BattleScore = a.battleScore(snap)
	if prev != nil && prev.BattleScore != snap.BattleScore && a.opts.IsLocal != nil && a.opts.IsLocal(c.ID()) {
		a.events.Dispatch(events.BattleScoreChangedEvent(c.ID(), prev.BattleScore, snap.BattleScore))
	}

	a.log.Debug("rebuilt derived state",
		zap.Stringer("character", c.ID()),
		zap.Int("battle_score", snap.BattleScore),
		zap.Int("ailment_sources", used),
	)
	return snap
}

// overrides walks buffs from last to first and returns the latest buff
// overriding damage info and the latest overriding skills.
func overrides(buffs []*buff.Calculated) (dmg, skills *buff.Calculated) {
	for i := len(buffs) - 1; i >= 0 && (dmg == nil || skills == nil); i-- {
		b := buffs[i]
		if dmg == nil && b.IsOverrideDamageInfo {
			dmg = b
		}
		if skills == nil && b.IsOverrideSkills {
			skills = b
		}
	}
	return dmg, skills
}

func (a *Aggregator) passives(skills map[string]int) []*buff.Calculated {
	var out []*buff.Calculated
	for _, id := range stats.Keys(skills) {
		if state.PassiveBuff(a.defs, id) == nil {
			continue
		}
		out = append(out, a.caches.PassiveSkill(id, skills[id]))
	}
	return out
}

func equippedItems(c Character) []types.CharacterItem {
	items := c.EquipItems()
	w := c.Weapons()
	out := make([]types.CharacterItem, 0, len(items)+2)
	out = append(out, items...)
	if w.RightHand != nil {
		out = append(out, *w.RightHand)
	}
	if w.LeftHand != nil {
		out = append(out, *w.LeftHand)
	}
	return out
}

func (a *Aggregator) enhancer(id string) *types.ItemDef {
	def := state.Item(a.defs, id)
	if def == nil || def.Type != types.ItemSocketEnhancer {
		return nil
	}
	return def
}

func (a *Aggregator) applySets(total *stats.Bonus, counts map[string]int) {
	for _, id := range stats.Keys(counts) {
		set := a.defs.EquipmentSets[id]
		if set == nil {
			continue
		}
		for _, eff := range set.Effects {
			if eff.Count > 0 && counts[id] >= eff.Count {
				total.Merge(stats.At(eff.Bonus, 1))
			}
		}
	}
}

func (a *Aggregator) equippedHand(ci *types.CharacterItem, total stats.Bonus, override *buff.Calculated) Hand {
	if ci == nil {
		return Hand{}
	}
	def := a.caches.Item(*ci).Item
	if def == nil || def.Type != types.ItemWeapon {
		return Hand{}
	}
	return a.hand(def, ci.Level, ci.Sockets, total, override)
}

func (a *Aggregator) hand(def *types.ItemDef, level int, sockets []string, total stats.Bonus, override *buff.Calculated) Hand {
	h := Hand{
		Available:    true,
		Weapon:       def,
		Level:        level,
		Damages:      map[string]types.MinMax{},
		AbilityIndex: map[string]int{},
	}
	if override != nil {
		h.DamageInfo = override.OverrideDamageInfo
	} else if wt := state.WeaponType(a.defs, def); wt != nil {
		h.DamageInfo = wt.DamageInfo
	}

	elem := def.DamageElement
	if elem == "" {
		elem = DefaultDamageElement
	}
	if base := stats.Range(def.Damage, level); base != (types.MinMax{}) {
		h.Damages[elem] = base
	}
	for k, v := range total.Damages {
		d := h.Damages[k]
		d.Min += v.Min
		d.Max += v.Max
		h.Damages[k] = d
	}
	for k, d := range h.Damages {
		r := total.DamagesRate[k]
		d.Min *= 1 + r.Min
		d.Max *= 1 + r.Max
		h.Damages[k] = d
	}

	for _, ab := range def.Abilities {
		h.addAbility(ab)
	}
	for _, sid := range sockets {
		if e := a.enhancer(sid); e != nil {
			for _, ab := range e.Abilities {
				h.addAbility(ab)
			}
		}
	}
	return h
}

// addAbility appends ab, or replaces the ability already holding its key.
func (h *Hand) addAbility(ab types.WeaponAbility) {
	if i, ok := h.AbilityIndex[ab.Key]; ok {
		h.Abilities[i] = ab
		return
	}
	h.AbilityIndex[ab.Key] = len(h.Abilities)
	h.Abilities = append(h.Abilities, ab)
}

func (a *Aggregator) defaultWeapon(c Character) *types.ItemDef {
	if mw, ok := c.(MonsterWeaponer); ok {
		if def, ok := mw.MonsterWeapon(); ok && def != nil {
			return def
		}
	}
	if def := state.DefaultWeapon(a.defs); def != nil {
		return def
	}
	return Unarmed
}

func (a *Aggregator) battleScore(s *Snapshot) int {
	score := 0.0
	for _, k := range stats.Keys(s.Attributes) {
		if def := a.defs.Attributes[k]; def != nil {
			score += s.Attributes[k] * def.BattleScore
		}
	}
	for _, k := range stats.Keys(s.Skills) {
		if def := state.Skill(a.defs, k); def != nil {
			score += float64(s.Skills[k]) * def.BattleScore
		}
	}
	for _, k := range stats.Keys(s.Resistances) {
		if el := a.defs.DamageElements[k]; el != nil {
			score += s.Resistances[k] * el.ResistanceBattleScore
		}
	}
	for _, k := range stats.Keys(s.Armors) {
		if el := a.defs.DamageElements[k]; el != nil {
			score += s.Armors[k] * el.ArmorBattleScore
		}
	}
	for _, h := range []Hand{s.RightHand, s.LeftHand} {
		if !h.Available {
			continue
		}
		for _, k := range stats.Keys(h.Damages) {
			if el := a.defs.DamageElements[k]; el != nil {
				d := h.Damages[k]
				score += (d.Min + d.Max) / 2 * el.DamageBattleScore
			}
		}
		if !h.IsDefault {
			score += h.Weapon.BattleScore
		}
	}
	score += a.rules.StatsBattleScore(s.Stats)
	return int(math.Ceil(score))
}

func addFloats(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] += v
	}
}
