// Package rules holds the gameplay formulas the aggregator delegates to:
// carried weight and slots, their limits, and the stat-block share of the
// battle score.
package rules

import (
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// Rules is the gameplay-rule strategy. Implementations must be pure.
type Rules interface {
	TotalItemWeight(defs *state.Defs, equipped, carried []types.CharacterItem) float64
	LimitItemWeight(s types.CharacterStats) float64
	TotalItemSlot(defs *state.Defs, carried []types.CharacterItem) int
	LimitItemSlot(s types.CharacterStats) int
	StatsBattleScore(s types.CharacterStats) float64
}

// Default implements Rules with the content's stat weights.
type Default struct {
	StatWeights types.CharacterStats
}

// FromDefs returns the default rules weighted by Game.StatBattleScores.
func FromDefs(defs *state.Defs) Default {
	return Default{StatWeights: defs.Game.StatBattleScores}
}

// TotalItemWeight sums item weight times stack amount over every item.
// Unknown items weigh nothing.
func (Default) TotalItemWeight(defs *state.Defs, equipped, carried []types.CharacterItem) float64 {
	total := 0.0
	for _, list := range [][]types.CharacterItem{equipped, carried} {
		for _, ci := range list {
			item := state.Item(defs, ci.DataID)
			if item == nil {
				continue
			}
			total += item.Weight * float64(amount(ci))
		}
	}
	return total
}

// LimitItemWeight is the weight_limit stat.
func (Default) LimitItemWeight(s types.CharacterStats) float64 {
	return s[types.StatWeightLimit]
}

// TotalItemSlot counts one slot per full or partial stack.
func (Default) TotalItemSlot(defs *state.Defs, carried []types.CharacterItem) int {
	slots := 0
	for _, ci := range carried {
		if ci.DataID == "" {
			continue
		}
		stack := 1
		if item := state.Item(defs, ci.DataID); item != nil && item.MaxStack > 1 {
			stack = item.MaxStack
		}
		slots += (amount(ci) + stack - 1) / stack
	}
	return slots
}

// LimitItemSlot is the slot_limit stat, truncated.
func (Default) LimitItemSlot(s types.CharacterStats) int {
	return int(s[types.StatSlotLimit])
}

// StatsBattleScore weighs every stat by its configured score.
func (d Default) StatsBattleScore(s types.CharacterStats) float64 {
	score := 0.0
	for i := range s {
		score += s[i] * d.StatWeights[i]
	}
	return score
}

func amount(ci types.CharacterItem) int {
	if ci.Amount < 1 {
		return 1
	}
	return ci.Amount
}
