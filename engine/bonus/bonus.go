// Package bonus rolls an item's seeded random bonuses.
//
// Only (item, level, seed, version) is ever stored, so the roll order below
// is a wire format. Version 0 keeps declaration order, version 1 shuffles
// the category order and the stat order, version 2 additionally shuffles
// entries inside each category. Never reorder existing steps; add a new
// version instead.
package bonus

import (
	"github.com/nathoo/statcore/engine/rng"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

// LatestVersion is the version newly minted items are rolled with.
const LatestVersion uint8 = 2

// Calculated is the rolled bonus of one item instance.
type Calculated struct {
	stats.Bonus
	AppliedCount int
	CapReached   bool
}

// Build rolls the random bonus of item at level from seed and version.
// A nil item yields a zero bonus without touching the generator.
func Build(item *types.ItemDef, level int, seed int32, version uint8) Calculated {
	c := Calculated{Bonus: stats.NewBonus()}
	if item == nil {
		return c
	}

	g := &generator{
		rng:     rng.New(int64(seed)),
		def:     &item.RandomBonus,
		version: version,
		scale:   1 + item.RandomBonus.LevelScale*float64(max(level, 1)-1),
		out:     &c,
	}

	ops := []func(){
		g.attributes,
		g.attributesRate,
		g.resistances,
		g.armors,
		g.damages,
		g.skills,
		g.statsFlat,
		g.statsRate,
	}
	if version > 0 {
		ops = append(ops, g.armorsRate, g.damagesRate)
		g.rng.Shuffle(len(ops), func(i, j int) { ops[i], ops[j] = ops[j], ops[i] })
	}

	for _, op := range ops {
		if g.capped() {
			break
		}
		op()
	}
	return c
}

type generator struct {
	rng     *rng.RNG
	def     *types.RandomBonusDef
	version uint8
	scale   float64
	out     *Calculated
}

// capped reports whether the applied count has reached the cap. A cap of
// zero never stops generation.
func (g *generator) capped() bool {
	return g.out.CapReached
}

// accept rolls the gate for one entry. The gate is drawn even for a zero
// rate.
func (g *generator) accept(rate float64) bool {
	return g.rng.Float64() < rate
}

// applied counts one accepted entry and reports whether the cap was hit.
func (g *generator) applied() bool {
	g.out.AppliedCount++
	limit := g.def.MaxRandomStatsAmount
	if limit > 0 && g.out.AppliedCount >= limit {
		g.out.CapReached = true
	}
	return g.out.CapReached
}

// order returns the iteration order for a category of n entries.
func (g *generator) order(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if g.version > 1 {
		g.rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return idx
}

func (g *generator) floats(entries []types.RandomFloatEntry, dst map[string]float64) {
	if len(entries) == 0 {
		return
	}
	for _, i := range g.order(len(entries)) {
		e := entries[i]
		if !g.accept(e.ApplyRate) {
			continue
		}
		dst[e.ID] += g.rng.RangeFloat(e.Min, e.Max) * g.scale
		if g.applied() {
			return
		}
	}
}

func (g *generator) ranges(entries []types.RandomDamageEntry, dst map[string]types.MinMax) {
	if len(entries) == 0 {
		return
	}
	for _, i := range g.order(len(entries)) {
		e := entries[i]
		if !g.accept(e.ApplyRate) {
			continue
		}
		lo := g.rng.RangeFloat(e.Min.Min, e.Min.Max) * g.scale
		hi := g.rng.RangeFloat(e.Max.Min, e.Max.Max) * g.scale
		if hi < lo {
			hi = lo
		}
		cur := dst[e.ID]
		cur.Min += lo
		cur.Max += hi
		dst[e.ID] = cur
		if g.applied() {
			return
		}
	}
}

func (g *generator) attributes()     { g.floats(g.def.Attributes, g.out.Attributes) }
func (g *generator) attributesRate() { g.floats(g.def.AttributesRate, g.out.AttributesRate) }
func (g *generator) resistances()    { g.floats(g.def.Resistances, g.out.Resistances) }
func (g *generator) armors()         { g.floats(g.def.Armors, g.out.Armors) }
func (g *generator) armorsRate()     { g.floats(g.def.ArmorsRate, g.out.ArmorsRate) }
func (g *generator) damages()        { g.ranges(g.def.Damages, g.out.Damages) }
func (g *generator) damagesRate()    { g.ranges(g.def.DamagesRate, g.out.DamagesRate) }

func (g *generator) skills() {
	entries := g.def.Skills
	if len(entries) == 0 {
		return
	}
	for _, i := range g.order(len(entries)) {
		e := entries[i]
		if !g.accept(e.ApplyRate) {
			continue
		}
		g.out.Skills[e.ID] += g.rng.RangeInt(e.MinLevel, e.MaxLevel)
		if g.applied() {
			return
		}
	}
}

func (g *generator) statsFlat() { g.statBlock(&g.def.Stats, &g.out.Stats) }
func (g *generator) statsRate() { g.statBlock(&g.def.StatsRate, &g.out.StatsRate) }

// statBlock rolls each of the character stats once. Version 1 and later
// shuffle the stat order.
func (g *generator) statBlock(def *types.RandomStats, dst *types.CharacterStats) {
	ids := make([]types.StatID, types.StatCount)
	for i := range ids {
		ids[i] = types.StatID(i)
	}
	if g.version > 0 {
		g.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	for _, id := range ids {
		a := def[id]
		if !g.accept(a.ApplyRate) {
			continue
		}
		dst[id] += g.rng.RangeFloat(a.Min, a.Max) * g.scale
		if g.applied() {
			return
		}
	}
}
