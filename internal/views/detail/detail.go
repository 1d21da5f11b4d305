// Package detail renders the alert detail overlay.
package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
)

const (
	panelWidth = 64
	labelWidth = 12
)

var (
	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// Model holds the alert being inspected and its place in the log.
type Model struct {
	Entry *reconcile.AlertEntry
	Index int // 0 is the newest entry
	Total int

	now func() time.Time
}

// New creates a detail model for the entry at index i of log. It returns
// an empty model when i is out of range.
func New(log *reconcile.AlertLog, i int) Model {
	if log == nil || i < 0 || i >= log.Len() {
		return Model{}
	}
	e := log.At(i)
	return Model{Entry: &e, Index: i, Total: log.Len(), now: time.Now}
}

// View renders the detail panel. Returns an empty string if no entry is set.
func (m Model) View() string {
	if m.Entry == nil {
		return ""
	}
	border, _ := theme.PriorityColors(string(m.Entry.Priority))
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(panelWidth).
		Render(m.renderInner())
}

func (m Model) renderInner() string {
	e := m.Entry
	var b strings.Builder

	border, _ := theme.PriorityColors(string(e.Priority))
	b.WriteString(styleTitle.Render(fmt.Sprintf("Alert %d of %d", m.Index+1, m.Total)) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "Priority", lipgloss.NewStyle().Foreground(border).Bold(true).Render(e.Label()))
	if e.Timestamp.IsZero() {
		writeRow(&b, "Time", "unknown")
	} else {
		writeRow(&b, "Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		writeRow(&b, "Age", formatAge(m.clock().Sub(e.Timestamp)))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(panelWidth - 4).Render(styleValue.Render(e.Message)))
	b.WriteString("\n\n")
	b.WriteString(styleFooter.Render("[j/k] older/newer  [esc] close"))
	return b.String()
}

func (m Model) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds ago", int(d.Minutes()), int(d.Seconds())%60)
	default:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm ago", h, m)
	}
}
