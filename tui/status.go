package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/statcore/engine"
	"github.com/nathoo/statcore/engine/derived"
	"github.com/nathoo/statcore/engine/stats"
	"github.com/nathoo/statcore/types"
)

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderStatusBar produces a full-width inverted status line showing the
// character, battle score, carried weight and active ailments. The bar
// turns red while the character is over a carry limit.
func (m Model) renderStatusBar() string {
	ch := m.engine.Character
	snap := m.engine.Derived()

	left := fmt.Sprintf(" %s Lv%d | BS %d", ch.Name(), ch.Level(), snap.BattleScore)
	right := fmt.Sprintf("W %s/%s | S %d/%d ",
		trimFloat(round2(snap.TotalWeight)), trimFloat(round2(snap.LimitWeight)), snap.TotalSlot, snap.LimitSlot)

	// Show ailment names if they fit, otherwise just the count.
	if active := snap.Ailments.Active(); len(active) > 0 {
		candidate := fmt.Sprintf("%s | %s", strings.Join(active, ","), right)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Ailments: %d | %s", len(active), right)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	style := styleStatusBar
	if snap.IsOverweight || snap.IsOverSlot {
		style = styleStatusAlert
	}
	return style.Width(m.width).Render(bar)
}

// renderSheetPane draws the derived sheet as a fixed-width column clipped
// to height lines. Long rows wrap inside the column.
func (m Model) renderSheetPane(height int) string {
	return stylePane.Width(paneWidth).Height(height).MaxHeight(height).
		Render(strings.Join(sheetLines(m.engine), "\n"))
}

// sheetLines lists the sheet pane rows: headline, non-zero stats and
// attributes, resistances, both hands, carry totals, ailments.
func sheetLines(e *engine.Engine) []string {
	ch := e.Character
	snap := e.Derived()

	out := []string{
		styleLabel.Render(fmt.Sprintf("%s  Lv%d", ch.Name(), ch.Level())),
		styleScore.Render(fmt.Sprintf("Battle score %d", snap.BattleScore)),
		"",
	}
	for i, v := range snap.Stats {
		if v != 0 {
			out = append(out, fmt.Sprintf("%-22s %s", stats.Name(types.StatID(i)), trimFloat(round2(v))))
		}
	}
	out = appendMap(out, "Attributes", snap.Attributes)
	out = appendMap(out, "Resistances", snap.Resistances)
	out = appendMap(out, "Armors", snap.Armors)

	out = append(out, "", handLine("Right", snap.RightHand), handLine("Left", snap.LeftHand))
	out = append(out, "",
		fmt.Sprintf("Weight %s/%s", trimFloat(round2(snap.TotalWeight)), trimFloat(round2(snap.LimitWeight))),
		fmt.Sprintf("Slots  %d/%d", snap.TotalSlot, snap.LimitSlot))
	for _, a := range snap.Ailments.Active() {
		out = append(out, styleAilment.Render(a))
	}
	return out
}

func appendMap(out []string, label string, m map[string]float64) []string {
	var rows []string
	for _, k := range stats.Keys(m) {
		if m[k] != 0 {
			rows = append(rows, fmt.Sprintf("  %-20s %s", k, trimFloat(round2(m[k]))))
		}
	}
	if len(rows) == 0 {
		return out
	}
	out = append(out, "", styleLabel.Render(label))
	return append(out, rows...)
}

func handLine(label string, h derived.Hand) string {
	if !h.Available || h.Weapon == nil {
		return styleHand.Render(label + ": empty")
	}
	name := h.Weapon.Title
	if name == "" {
		name = h.Weapon.ID
	}
	var dmg []string
	for _, k := range stats.Keys(h.Damages) {
		d := h.Damages[k]
		dmg = append(dmg, fmt.Sprintf("%s %s-%s", k, trimFloat(round2(d.Min)), trimFloat(round2(d.Max))))
	}
	s := fmt.Sprintf("%s: %s", label, name)
	if len(dmg) > 0 {
		s += " (" + strings.Join(dmg, ", ") + ")"
	}
	return styleHand.Render(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
