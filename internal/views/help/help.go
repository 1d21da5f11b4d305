// Package help renders the key binding reference as a markdown overlay.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sightline/console/internal/theme"
)

const intro = `# Sightline console

Start a monitoring session, watch alerts and the camera feed arrive, and
relay voice commands. Session state shown here follows the server: if the
server pauses or stops a session, the dashboard follows it.
`

// Markdown builds the help document for the given bindings.
func Markdown(bindings []key.Binding) string {
	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n## Keys\n\n| Key | Action |\n| --- | --- |\n")
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	return sb.String()
}

// Model holds the markdown renderer for the width it was built for.
type Model struct {
	renderer *glamour.TermRenderer
	wrap     int
}

func New() *Model { return &Model{} }

func (m *Model) rendererFor(wrap int) *glamour.TermRenderer {
	if m.renderer != nil && m.wrap == wrap {
		return m.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	m.renderer, m.wrap = r, wrap
	return r
}

// View renders the help overlay. Rendering failures fall back to the raw
// markdown.
func (m *Model) View(bindings []key.Binding, width int) string {
	innerW := max(width-8, 30)
	md := Markdown(bindings)

	out := md
	if r := m.rendererFor(innerW); r != nil {
		if rendered, err := r.Render(md); err == nil {
			out = strings.TrimSpace(rendered)
		}
	}

	help := theme.StyleDimmed.Render("esc:close")
	return theme.StyleOverlay.Width(innerW + 4).Render(lipgloss.JoinVertical(lipgloss.Left, out, "", help))
}
