// Package stats evaluates level-scaled definitions and merges bonus blocks.
package stats

import (
	"sort"
	"strings"

	"github.com/nathoo/statcore/types"
)

// Bonus is an evaluated, level-resolved bonus block. All category maps are
// keyed by definition id.
type Bonus struct {
	Stats          types.CharacterStats
	StatsRate      types.CharacterStats
	Attributes     map[string]float64
	AttributesRate map[string]float64
	Resistances    map[string]float64
	Armors         map[string]float64
	ArmorsRate     map[string]float64
	Damages        map[string]types.MinMax
	DamagesRate    map[string]types.MinMax
	Skills         map[string]int
}

// NewBonus returns an empty bonus with allocated maps.
func NewBonus() Bonus {
	return Bonus{
		Attributes:     map[string]float64{},
		AttributesRate: map[string]float64{},
		Resistances:    map[string]float64{},
		Armors:         map[string]float64{},
		ArmorsRate:     map[string]float64{},
		Damages:        map[string]types.MinMax{},
		DamagesRate:    map[string]types.MinMax{},
		Skills:         map[string]int{},
	}
}

// Merge adds o into b. Rates add as well.
func (b *Bonus) Merge(o Bonus) {
	b.Stats = Add(b.Stats, o.Stats)
	b.StatsRate = Add(b.StatsRate, o.StatsRate)
	mergeFloats(b.Attributes, o.Attributes)
	mergeFloats(b.AttributesRate, o.AttributesRate)
	mergeFloats(b.Resistances, o.Resistances)
	mergeFloats(b.Armors, o.Armors)
	mergeFloats(b.ArmorsRate, o.ArmorsRate)
	mergeRanges(b.Damages, o.Damages)
	mergeRanges(b.DamagesRate, o.DamagesRate)
	for k, v := range o.Skills {
		b.Skills[k] += v
	}
}

// IsZero reports whether the bonus contributes nothing.
func (b Bonus) IsZero() bool {
	return b.Stats == (types.CharacterStats{}) &&
		b.StatsRate == (types.CharacterStats{}) &&
		len(b.Attributes) == 0 && len(b.AttributesRate) == 0 &&
		len(b.Resistances) == 0 && len(b.Armors) == 0 && len(b.ArmorsRate) == 0 &&
		len(b.Damages) == 0 && len(b.DamagesRate) == 0 && len(b.Skills) == 0
}

// At evaluates def at the given level.
func At(def types.BonusDef, level int) Bonus {
	b := NewBonus()
	b.Stats = Stats(def.Stats, level)
	b.StatsRate = Stats(def.StatsRate, level)
	floatsAt(b.Attributes, def.Attributes, level)
	floatsAt(b.AttributesRate, def.AttributesRate, level)
	floatsAt(b.Resistances, def.Resistances, level)
	floatsAt(b.Armors, def.Armors, level)
	floatsAt(b.ArmorsRate, def.ArmorsRate, level)
	for k, v := range def.Damages {
		b.Damages[k] = Range(v, level)
	}
	for k, v := range def.DamagesRate {
		b.DamagesRate[k] = Range(v, level)
	}
	for k, v := range def.Skills {
		b.Skills[k] = Int(v, level)
	}
	return b
}

// Float evaluates v at level. Levels below 1 count as 1.
func Float(v types.IncrementalFloat, level int) float64 {
	return v.Base + v.PerLevel*steps(level)
}

// Int evaluates v at level, truncating toward zero.
func Int(v types.IncrementalInt, level int) int {
	return int(v.Base + v.PerLevel*steps(level))
}

// Range evaluates both ends of v at level.
func Range(v types.IncrementalMinMax, level int) types.MinMax {
	s := steps(level)
	return types.MinMax{
		Min: v.Base.Min + v.PerLevel.Min*s,
		Max: v.Base.Max + v.PerLevel.Max*s,
	}
}

// Stats evaluates every stat of v at level.
func Stats(v types.IncrementalStats, level int) types.CharacterStats {
	s := steps(level)
	var out types.CharacterStats
	for i := range out {
		out[i] = v.Base[i] + v.PerLevel[i]*s
	}
	return out
}

func steps(level int) float64 {
	if level < 1 {
		level = 1
	}
	return float64(level - 1)
}

// Add returns a + b element-wise.
func Add(a, b types.CharacterStats) types.CharacterStats {
	for i := range a {
		a[i] += b[i]
	}
	return a
}

// Scale returns a multiplied by f.
func Scale(a types.CharacterStats, f float64) types.CharacterStats {
	for i := range a {
		a[i] *= f
	}
	return a
}

// ApplyRate returns flat increased by flat*rate element-wise.
func ApplyRate(flat, rate types.CharacterStats) types.CharacterStats {
	for i := range flat {
		flat[i] += flat[i] * rate[i]
	}
	return flat
}

// ID returns the StatID for a content name such as "hp_recovery".
func ID(name string) (types.StatID, bool) {
	name = strings.ToLower(name)
	for i, n := range types.StatNames {
		if n == name {
			return types.StatID(i), true
		}
	}
	return 0, false
}

// Name returns the content name of id.
func Name(id types.StatID) string {
	if id >= types.StatCount {
		return ""
	}
	return types.StatNames[id]
}

// Keys returns the keys of m in sorted order. Every merge and score that
// walks a map goes through Keys so results never depend on map order.
func Keys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CloneFloats returns a copy of m that is never nil.
func CloneFloats(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneInts returns a copy of m that is never nil.
func CloneInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeFloats(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] += v
	}
}

func mergeRanges(dst, src map[string]types.MinMax) {
	for k, v := range src {
		cur := dst[k]
		cur.Min += v.Min
		cur.Max += v.Max
		dst[k] = cur
	}
}

func floatsAt(dst map[string]float64, src map[string]types.IncrementalFloat, level int) {
	for k, v := range src {
		dst[k] = Float(v, level)
	}
}
