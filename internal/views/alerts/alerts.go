// Package alerts renders the alert log panel.
package alerts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
)

// Placeholder is shown until the first alert arrives.
const Placeholder = "No alerts yet"

// Model holds the alert panel's layout and scroll position.
type Model struct {
	Width  int
	Height int
	Offset int // entries skipped from the top (newest)
}

// New creates an alert panel model.
func New() Model {
	return Model{}
}

// ScrollDown moves toward older entries.
func (m *Model) ScrollDown(n, total int) {
	m.Offset += n
	if last := total - 1; m.Offset > last {
		m.Offset = last
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// ScrollUp moves toward newer entries.
func (m *Model) ScrollUp(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// View renders the log newest first. Each entry takes two lines.
func (m Model) View(log *reconcile.AlertLog) string {
	width := m.Width
	if width < 30 {
		width = 30
	}
	innerW := width - 4

	title := theme.StyleHeader.Render(fmt.Sprintf("ALERTS (%d/%d)", log.Len(), log.Cap()))

	if log.Len() == 0 {
		body := theme.StyleDimmed.Render(Placeholder)
		return theme.StylePanel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	visible := log.Len()
	if m.Height > 0 {
		if fit := (m.Height - 3) / 2; fit < visible {
			visible = max(fit, 1)
		}
	}
	start := min(m.Offset, log.Len()-1)
	end := min(start+visible, log.Len())

	rows := []string{title}
	for i := start; i < end; i++ {
		rows = append(rows, RenderEntry(log.At(i), innerW))
	}
	if rest := log.Len() - end; rest > 0 {
		rows = append(rows, theme.StyleDimmed.Render(fmt.Sprintf("↓ %d older", rest)))
	}
	return theme.StylePanel.Width(width - 2).Render(strings.Join(rows, "\n"))
}

// RenderEntry renders one alert: a priority-colored marker with label and
// time on the first line and the message on the second.
func RenderEntry(e reconcile.AlertEntry, width int) string {
	border, bg := theme.PriorityColors(string(e.Priority))

	ts := "--:--:--"
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp.Local().Format("15:04:05")
	}

	label := lipgloss.NewStyle().Bold(true).Foreground(border).Render(e.Label())
	head := label + "  " + theme.StyleDimmed.Render(ts)

	msg := e.Message
	if width > 8 {
		msg = ansi.Truncate(msg, width-2, "...")
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		BorderForeground(border).
		Background(bg).
		PaddingLeft(1).
		Width(width).
		Render(head + "\n" + msg)
}
