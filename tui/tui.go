package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/cli"
	"github.com/nathoo/statcore/engine"
)

const (
	// paneWidth is the width of the derived-sheet pane, padding included.
	// Its left border and a spacer take two more cells.
	paneWidth    = 36
	// paneMinWidth is the terminal width below which the pane is hidden.
	paneMinWidth = 100
)

// rawLine is an unstyled output line kept for re-wrapping on resize.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the statcore console.
type Model struct {
	engine *engine.Engine
	meta   *cli.CLI // command execution and meta-commands, shared with the plain console

	log      viewport.Model
	input    textinput.Model
	history  *cli.History // Up/Down recall, meta-commands included
	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
}

// consoleOutputMsg carries output into the Update loop.
type consoleOutputMsg struct {
	input    string // echoed command; empty for the banner
	lines    []string
	isSystem bool // meta-command output
}

// New creates a model wired to eng. Saves go to saveDir.
func New(eng *engine.Engine, saveDir string, log *zap.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "show, equip <item>, buff <name>, /help"
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		meta:    cli.New(eng, saveDir, log),
		input:   ti,
		history: cli.NewHistory(100),
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(eng *engine.Engine, saveDir string, log *zap.Logger, trace bool) error {
	m := New(eng, saveDir, log)
	m.meta.Trace = trace
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// Init emits the banner and the starting sheet.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.banner)
}

func (m Model) banner() tea.Msg {
	var lines []string
	if g := m.engine.Defs.Game; g.Title != "" {
		lines = append(lines, fmt.Sprintf("%s %s", g.Title, g.Version), "Type /help for commands. Tab completes verbs.", "")
	}
	return consoleOutputMsg{lines: append(lines, m.engine.Step("show").Output...)}
}

// Update handles key presses, resizes and console output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case consoleOutputMsg:
		m = m.appendOutput(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey consumes the keys the console binds itself. Anything else goes
// to the text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true

	case "enter":
		next, cmd := m.handleEnter()
		return next, cmd, true

	case "tab":
		if done, ok := completeVerb(m.input.Value()); ok {
			m.setInput(done)
		}
		return m, nil, true

	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.setInput(prev)
		}
		return m, nil, true

	case "down":
		next, ok := m.history.Next()
		if !ok {
			m.history.ResetCursor()
		}
		m.setInput(next)
		return m, nil, true

	case "ctrl+l":
		m.rawLines = nil
		m.refreshLog()
		return m, nil, true

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) setInput(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
}

// resize lays out the log, status bar and input, and the sheet pane when
// the terminal is wide enough.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	logHeight := max(height-2, 1) // status bar + input line
	logWidth := width
	if m.showPane() {
		logWidth = width - paneWidth - 2
	}

	if !m.ready {
		m.log = viewport.New(logWidth, logHeight)
		m.log.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.log.Width = logWidth
		m.log.Height = logHeight
	}
	m.refreshLog()
}

func (m Model) showPane() bool {
	return m.width >= paneMinWidth
}

// handleEnter runs the submitted line as a meta-command or console command.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		lines, quit := m.handleMeta(input)
		m = m.appendOutput(consoleOutputMsg{input: input, lines: lines, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	m = m.appendOutput(consoleOutputMsg{input: input, lines: m.meta.Exec(input)})
	return m, nil
}

// handleMeta dispatches a meta-command and reports its lines and whether
// the session should end.
func (m *Model) handleMeta(input string) ([]string, bool) {
	var lines []string
	quit := m.meta.HandleMeta(input, func(s string) {
		lines = append(lines, s)
	})
	return lines, quit
}

// completeVerb extends a partial first word to the unique console verb or
// meta-command it prefixes.
func completeVerb(input string) (string, bool) {
	if input == "" || strings.ContainsRune(input, ' ') {
		return "", false
	}
	candidates := engine.Verbs
	if strings.HasPrefix(input, "/") {
		candidates = metaCommands
	}
	match := ""
	for _, v := range candidates {
		if !strings.HasPrefix(v, input) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = v
	}
	if match == "" {
		return "", false
	}
	return match + " ", true
}

var metaCommands = []string{"/save", "/load", "/quit", "/help", "/state", "/trace", "/history"}

// appendOutput records a command and its output, separated from the next
// by a blank line.
func (m Model) appendOutput(msg consoleOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshLog()
	return m
}

// refreshLog re-wraps and re-styles every line at the current log width.
func (m *Model) refreshLog() {
	if !m.ready {
		return
	}
	width := max(m.log.Width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		styled = append(styled, renderLine(rl, wordWrap(rl.text, width)))
	}
	m.log.SetContent(strings.Join(styled, "\n"))
	m.log.GotoBottom()
}

func renderLine(rl rawLine, text string) string {
	switch {
	case rl.isInput:
		return stylePlayerInput.Render(text)
	case rl.isSystem:
		return styledSystemMsg(text)
	}
	switch rl.kind {
	case kindLabeled:
		return styledLabeled(text)
	case kindScore:
		return styleScore.Render(text)
	case kindHand:
		return styleHand.Render(text)
	case kindAilment:
		return styleAilment.Render(text)
	case kindSystem:
		return styleSystem.Render(text)
	case kindError:
		return styleError.Render(text)
	case kindTrace:
		return styleTrace.Render(text)
	default:
		return styleText.Render(text)
	}
}

// wordWrap breaks text at spaces so no line exceeds width display cells.
// A single word longer than width keeps its own line.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	var (
		b    strings.Builder
		used int
	)
	for i, word := range strings.Fields(text) {
		w := lipgloss.Width(word)
		switch {
		case i == 0:
			used = w
		case used+1+w > width:
			b.WriteByte('\n')
			used = w
		default:
			b.WriteByte(' ')
			used += 1 + w
		}
		b.WriteString(word)
	}
	return b.String()
}

// View renders the log (beside the sheet pane when wide), the status bar
// and the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	body := m.log.View()
	if m.showPane() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.renderSheetPane(m.log.Height))
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap leaves Up/Down to the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
