package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusAlert = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("252")).
				Bold(true)

	stylePane = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleText = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleLabel = lipgloss.NewStyle().
			Bold(true)

	styleScore = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleHand = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleAilment = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindText lineKind = iota
	kindLabeled
	kindScore
	kindHand
	kindAilment
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case line == "":
		return kindText
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "Battle score:"):
		return kindScore
	case strings.HasPrefix(line, "Right hand:"), strings.HasPrefix(line, "Left hand:"):
		return kindHand
	case strings.HasPrefix(line, "Ailments:"),
		strings.HasSuffix(line, "(overweight)"),
		strings.HasSuffix(line, "(over limit)"):
		return kindAilment
	case strings.HasPrefix(line, "Usage:"), startsLower(line):
		// Console errors surface as plain error strings.
		return kindError
	case labelEnd(line) > 0:
		return kindLabeled
	default:
		return kindText
	}
}

func startsLower(line string) bool {
	for _, r := range line {
		return unicode.IsLower(r)
	}
	return false
}

// labelEnd returns the index just past a leading "Label: " prefix, or 0.
// Labels are short and contain no sentence punctuation.
func labelEnd(line string) int {
	i := strings.Index(line, ": ")
	if i <= 0 || i > 20 || strings.ContainsAny(line[:i], ".,!?") {
		return 0
	}
	return i + 2
}

// styledLabeled renders "Stats: hp 10, mp 5" with the label bold.
func styledLabeled(line string) string {
	end := labelEnd(line)
	if end == 0 {
		return styleText.Render(line)
	}
	return styleLabel.Render(line[:end]) + styleText.Render(line[end:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
