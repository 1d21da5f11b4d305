package status

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected  bool
	Indicators reconcile.Indicators
	SessionID  string
	Busy       string // in-flight controller action, e.g. "starting"; shown beside the control
	Width      int
}

// New creates a status bar model showing a stopped session.
func New() Model {
	return Model{Indicators: reconcile.IndicatorsFor(false)}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	dot := lipgloss.NewStyle().Foreground(theme.StatusColor(m.Indicators.Active)).Render("●")
	session := dot + " " + theme.StyleBold.Render(m.Indicators.Text)
	if m.Indicators.Active && m.SessionID != "" {
		id := m.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		session += theme.StyleDimmed.Render(" " + id)
	}

	// The control follows the session state alone.
	var control string
	switch {
	case m.Indicators.StartVisible:
		control = lipgloss.NewStyle().Foreground(theme.ColorActive).Render("[s] Start")
	case m.Indicators.StopVisible:
		control = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("[x] Stop")
	}
	if m.Busy != "" {
		control += theme.StyleDimmed.Render(" (" + m.Busy + "...)")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := session + sep + control + sep + connStr

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
