package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/statcore/engine"
	"github.com/nathoo/statcore/engine/state"
	"github.com/nathoo/statcore/types"
)

// testDefs returns minimal content for CLI testing.
func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Game = types.GameDef{Title: "Test Game", Version: "1.0"}
	defs.Attributes["str"] = &types.AttributeDef{ID: "str", BattleScore: 1}
	defs.DamageElements["physical"] = &types.DamageElementDef{ID: "physical", DamageBattleScore: 1}
	defs.Items["sword"] = &types.ItemDef{
		ID: "sword", Title: "Sword", Type: types.ItemWeapon,
		Damage: types.IncrementalMinMax{Base: types.MinMax{Min: 4, Max: 6}},
		RandomBonus: types.RandomBonusDef{
			Attributes: []types.RandomFloatEntry{{ID: "str", Min: 1, Max: 3, ApplyRate: 1}},
		},
	}
	defs.Skills["slash"] = &types.SkillDef{ID: "slash", Title: "Slash", BattleScore: 5}
	return defs
}

func newEngine() *engine.Engine {
	return engine.New(testDefs(), engine.Options{Seed: 7, Name: "Aria"})
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := New(newEngine(), t.TempDir(), nil)
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func TestCLI_BannerAndStartingSheet(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Test Game 1.0") {
		t.Error("expected title banner in output")
	}
	if !strings.Contains(output, "Aria, level 1") {
		t.Error("expected starting sheet in output")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye on /quit")
	}
}

func TestCLI_ConsoleCommand(t *testing.T) {
	c, out := newTestCLI(t, "equip sword seed 3\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "You wield Sword (level 1, seed 3, v2) in your right hand.") {
		t.Errorf("expected equip confirmation, got:\n%s", out.String())
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"/save", "/load", "/quit", "socket <gem> into <item>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	c := New(newEngine(), dir, nil)
	c.In = strings.NewReader("level 7\nequip sword seed 5\nlearn slash level 2\n/save test\n/quit\n")
	c.Out = &out
	c.Run()
	if !strings.Contains(out.String(), "Character saved to test.json.") {
		t.Fatalf("expected save confirmation, got:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "test.json")); err != nil {
		t.Fatalf("save file missing: %v", err)
	}
	want := c.Engine.Derived().BattleScore

	fresh := newEngine()
	var out2 bytes.Buffer
	c2 := New(fresh, dir, nil)
	c2.In = strings.NewReader("/load test\n/quit\n")
	c2.Out = &out2
	c2.Run()

	if !strings.Contains(out2.String(), "Loaded Aria (level 7") {
		t.Errorf("expected load confirmation, got:\n%s", out2.String())
	}
	if got := fresh.Derived().BattleScore; got != want {
		t.Errorf("battle score after load = %d, want %d", got, want)
	}
	if fresh.Character.ID() != c.Engine.Character.ID() {
		t.Error("loaded character should keep its id")
	}
}

func TestCLI_LoadMissing(t *testing.T) {
	c, out := newTestCLI(t, "/load nothing\n/quit\n")
	c.Run()
	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceShowsBattleScoreEvents(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nlearn slash level 2\n/trace\nlearn slash level 3\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") || !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace toggle messages")
	}
	if !strings.Contains(output, "battle_score_changed") || !strings.Contains(output, "delta=10") {
		t.Errorf("expected traced battle score event, got:\n%s", output)
	}
	if strings.Count(output, "[trace] Events:") != 1 {
		t.Error("trace should stop after the second toggle")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "equip sword seed 9\nlearn slash\n/state\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"Character: Aria", "Cached snapshots:", "Skill: slash 1", "(sword, level 1, seed 9, v2)"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in state output", want)
		}
	}
}

func TestCLI_EmptyInputAndComments(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\n\n/quit\n")
	c.Run()

	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines and comments should be skipped")
	}
}

func TestCLI_Again(t *testing.T) {
	c, out := newTestCLI(t, "g\nscore\nagain\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Nothing to repeat.") {
		t.Error("expected nothing-to-repeat message")
	}
	if strings.Count(output, "Battle score:") != 2 {
		t.Errorf("expected score twice, got:\n%s", output)
	}
}

func TestCLI_EchoInput(t *testing.T) {
	c, out := newTestCLI(t, "score\n/quit\n")
	c.EchoInput = true
	c.Run()

	if !strings.Contains(out.String(), "> score\n") {
		t.Error("expected echoed input after the prompt")
	}
}

func TestCLI_HistoryCommand(t *testing.T) {
	c, out := newTestCLI(t, "/history\nscore\nlearn slash\ng\n/history\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "[No commands yet.]") {
		t.Error("expected empty history message")
	}
	if !strings.Contains(output, "[1. score]") || !strings.Contains(output, "[2. learn slash]") {
		t.Errorf("expected numbered history, got:\n%s", output)
	}
	if strings.Contains(output, "[3.") {
		t.Error("again should not be recorded")
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("show")
	h.Push("equip sword")
	h.Push("learn slash")

	for _, want := range []string{"learn slash", "equip sword", "show", "show"} {
		got, ok := h.Prev()
		if !ok || got != want {
			t.Errorf("Prev() = %q (ok=%v), want %q", got, ok, want)
		}
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("show")
	h.Push("score")

	h.Prev() // "score"
	h.Prev() // "show"

	next, ok := h.Next()
	if !ok || next != "score" {
		t.Errorf("Next() = %q (ok=%v), want score", next, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("Prev on empty history should be false")
	}
	if _, ok := h.Next(); ok {
		t.Error("Next on empty history should be false")
	}
	if _, ok := h.Last(); ok {
		t.Error("Last on empty history should be false")
	}
	if got := h.Recent(3); len(got) != 0 {
		t.Errorf("Recent(3) = %v, want empty", got)
	}
}

func TestHistory_MaxSizeAndRecent(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if got := strings.Join(h.Recent(5), ","); got != "b,c" {
		t.Errorf("Recent(5) = %q, want b,c", got)
	}
	if got := strings.Join(h.Recent(1), ","); got != "c" {
		t.Errorf("Recent(1) = %q, want c", got)
	}
	if last, _ := h.Last(); last != "c" {
		t.Errorf("Last() = %q, want c", last)
	}
}

func TestHistory_SkipsBlankAndDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("show")
	h.Push("show")
	h.Push("")

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("show")
	h.Push("score")

	h.Prev()
	h.Prev()
	h.ResetCursor()

	if prev, ok := h.Prev(); !ok || prev != "score" {
		t.Errorf("Prev() after reset = %q, want score", prev)
	}
}
