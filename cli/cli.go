// Package cli provides plain terminal I/O, output formatting, and
// meta-command dispatch for the statcore console.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/statcore/engine"
	"github.com/nathoo/statcore/engine/save"
	"github.com/nathoo/statcore/types"
)

// CLI handles line-oriented interaction with the console.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Log       *zap.Logger
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	History   *History
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, saveDir string, log *zap.Logger) *CLI {
	if log == nil {
		log = zap.NewNop()
	}
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     log,
		SaveDir: saveDir,
		History: NewHistory(100),
	}
}

// Run shows the banner and the starting sheet, then loops: prompt, input,
// dispatch, output.
func (c *CLI) Run() {
	g := c.Engine.Defs.Game
	if g.Title != "" {
		c.printLine(fmt.Sprintf("%s %s", g.Title, g.Version))
		c.printLine("Type /help for commands.")
		c.printLine("")
	}
	c.printResult(c.Engine.Step("show"))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.HandleMeta(input, c.printSystem) {
				return // /quit
			}
			continue
		}

		for _, line := range c.Exec(input) {
			c.printLine(line)
		}
	}
}

// Exec runs one console command and returns the lines to show, followed
// by trace lines when tracing is on. "again" and "g" repeat the last
// command.
func (c *CLI) Exec(input string) []string {
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		last, ok := c.History.Last()
		if !ok {
			return []string{"Nothing to repeat."}
		}
		input = last
	} else {
		c.History.Push(input)
	}

	result := c.Engine.Step(input)
	out := result.Output
	if c.Trace {
		out = append(out, TraceLines(result)...)
	}
	return out
}

// HandleMeta dispatches a meta-command, reporting through emit. It returns
// true when the session should end. The TUI shares it.
func (c *CLI) HandleMeta(input string, emit func(string)) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		emit("Goodbye.")
		return true

	case "/save":
		emit(c.cmdSave(arg))

	case "/load":
		emit(c.cmdLoad(arg))

	case "/help":
		for _, line := range HelpLines() {
			emit(line)
		}

	case "/state":
		for _, line := range StateLines(c.Engine) {
			emit(line)
		}

	case "/history":
		recent := c.History.Recent(10)
		if len(recent) == 0 {
			emit("No commands yet.")
		}
		for i, cmd := range recent {
			emit(fmt.Sprintf("%d. %s", i+1, cmd))
		}

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			emit("Trace output enabled.")
		} else {
			emit("Trace output disabled.")
		}

	default:
		emit(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) cmdSave(name string) string {
	data, err := save.Save(c.Engine.Character, c.Engine.Defs)
	if err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	path := c.savePath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	c.Log.Info("character saved", zap.String("path", path), zap.Stringer("character", c.Engine.Character.ID()))
	return fmt.Sprintf("Character saved to %s.", filepath.Base(path))
}

func (c *CLI) cmdLoad(name string) string {
	path := c.savePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	c.Engine.SetCharacter(save.Restore(sd))
	c.Log.Info("character loaded", zap.String("path", path), zap.Stringer("character", sd.Character))
	return fmt.Sprintf("Loaded %s (level %d, battle score %d).", sd.Name, sd.Level, c.Engine.Derived().BattleScore)
}

// HelpLines lists the meta-commands and console verbs.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  Save the character (default: quicksave)",
		"  /load [name]  Load a character (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Dump the raw character and cache state",
		"  /trace        Toggle event trace output",
		"  /history      List recent console commands",
		"",
		"Console commands:",
		"  show (l)                          Derived character sheet",
		"  score / ailments                  Battle score, active restrictions",
		"  equip <item> [level N] [seed N] [hand left|right]",
		"  unequip <item> (take off)         Move an equipped item to the pack",
		"  carry <item> [x N] / drop <item>  Inventory",
		"  socket <gem> into <item>          Add a socket enhancer",
		"  buff <name> [level N] / unbuff    Apply or remove a buff",
		"  summon <name> / dismiss <name>",
		"  mount <name> / dismount",
		"  learn <skill> [level N] / forget <skill>",
		"  level <N>                         Set character level",
		"  roll <item> [level N] [seed N] [version N]",
		"  sweep                             Evict idle cached snapshots",
		"  again (g)                         Repeat your last command",
	}
}

// StateLines dumps the raw character record and cache occupancy.
func StateLines(e *engine.Engine) []string {
	ch := e.Character
	out := []string{
		fmt.Sprintf("Character: %s (%s)", ch.Name(), ch.ID()),
		fmt.Sprintf("Level: %d", ch.Level()),
		fmt.Sprintf("Cached snapshots: %d", e.CachedSnapshots()),
	}
	skills := ch.Skills()
	ids := make([]string, 0, len(skills))
	for id := range skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, fmt.Sprintf("Skill: %s %d", id, skills[id]))
	}
	for _, b := range ch.Buffs() {
		out = append(out, fmt.Sprintf("Buff: %s %s:%s lv%d", b.ID, types.BuffKindNames[b.Kind], b.DataID, b.Level))
	}
	w := ch.Weapons()
	if w.RightHand != nil {
		out = append(out, "Right hand: "+itemTuple(*w.RightHand))
	}
	if w.LeftHand != nil {
		out = append(out, "Left hand: "+itemTuple(*w.LeftHand))
	}
	for _, it := range ch.EquipItems() {
		out = append(out, "Equipped: "+itemTuple(it))
	}
	for _, it := range ch.NonEquipItems() {
		out = append(out, "Carried: "+itemTuple(it))
	}
	for _, s := range ch.Summons() {
		out = append(out, fmt.Sprintf("Summon: %s %s lv%d", s.ID, s.DataID, s.Level))
	}
	if m, ok := ch.Mount(); ok {
		out = append(out, fmt.Sprintf("Mount: %s lv%d", m.DataID, m.Level))
	}
	return out
}

func itemTuple(it types.CharacterItem) string {
	s := fmt.Sprintf("%s (%s, level %d, seed %d, v%d)", it.ID, it.DataID, it.Level, it.RandomSeed, it.Version)
	if it.Amount > 1 {
		s += fmt.Sprintf(" x%d", it.Amount)
	}
	if len(it.Sockets) > 0 {
		s += " sockets " + strings.Join(it.Sockets, ",")
	}
	return s
}

// TraceLines renders the events of a step.
func TraceLines(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, e.Data[k])
		}
		out = append(out, fmt.Sprintf("[trace]   %s %s", e.Type, strings.Join(parts, " ")))
	}
	return out
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
