package rules

import (
	"testing"

	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

func rulesDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Items["sword"] = &types.ItemDef{ID: "sword", Type: types.ItemWeapon, Weight: 3}
	defs.Items["arrow"] = &types.ItemDef{ID: "arrow", Type: types.ItemAmmo, Weight: 0.1, MaxStack: 50}
	defs.Items["potion"] = &types.ItemDef{ID: "potion", Type: types.ItemPotion, Weight: 0.5, MaxStack: 10}
	defs.Game.StatBattleScores[types.StatHP] = 0.1
	defs.Game.StatBattleScores[types.StatAccuracy] = 2
	return defs
}

func TestTotalItemWeight(t *testing.T) {
	defs := rulesDefs()
	r := FromDefs(defs)

	equipped := []types.CharacterItem{{DataID: "sword", Amount: 1}}
	carried := []types.CharacterItem{
		{DataID: "arrow", Amount: 20},
		{DataID: "potion"},
		{DataID: "unknown", Amount: 5},
	}
	got := r.TotalItemWeight(defs, equipped, carried)
	if want := 3 + 2.0 + 0.5; got != want {
		t.Errorf("TotalItemWeight = %v, want %v", got, want)
	}
}

func TestTotalItemSlot(t *testing.T) {
	defs := rulesDefs()
	r := FromDefs(defs)

	tests := []struct {
		name    string
		carried []types.CharacterItem
		want    int
	}{
		{"empty", nil, 0},
		{"one stack", []types.CharacterItem{{DataID: "arrow", Amount: 50}}, 1},
		{"overflowing stack", []types.CharacterItem{{DataID: "arrow", Amount: 51}}, 2},
		{"unstackable", []types.CharacterItem{{DataID: "sword", Amount: 2}}, 2},
		{"blank entries skipped", []types.CharacterItem{{}, {DataID: "potion", Amount: 3}}, 1},
	}
	for _, tt := range tests {
		if got := r.TotalItemSlot(defs, tt.carried); got != tt.want {
			t.Errorf("%s: TotalItemSlot = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLimitsAndScore(t *testing.T) {
	r := FromDefs(rulesDefs())

	var s types.CharacterStats
	s[types.StatWeightLimit] = 120
	s[types.StatSlotLimit] = 30.9
	s[types.StatHP] = 500
	s[types.StatAccuracy] = 10

	if got := r.LimitItemWeight(s); got != 120 {
		t.Errorf("LimitItemWeight = %v, want 120", got)
	}
	if got := r.LimitItemSlot(s); got != 30 {
		t.Errorf("LimitItemSlot = %d, want 30", got)
	}
	if got := r.StatsBattleScore(s); got != 70 {
		t.Errorf("StatsBattleScore = %v, want 70", got)
	}
}
