// Package wakeword renders the wake-word banner and animates its fade-out
// during the hide grace window.
package wakeword

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
)

const fps = 30

// Text is the banner label.
const Text = "◉ Wake word detected, listening..."

// FadeMsg advances the fade animation for generation Gen.
type FadeMsg struct{ Gen uint64 }

// Model holds the banner's fade animation. Level is 1 when fully shown and
// eases toward 0 while a hide is pending.
type Model struct {
	Width int

	spring harmonica.Spring
	level  float64
	vel    float64
	gen    uint64
}

// New creates a banner model at full intensity.
func New() Model {
	return Model{
		// Critically damped, settles in roughly the grace window.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 3.0, 1.0),
		level:  1,
	}
}

// Reset restores full intensity, e.g. on a new detection.
func (m *Model) Reset() {
	m.level, m.vel = 1, 0
	m.gen = 0
}

// StartFade begins easing out for the given hide generation and returns
// the first animation tick.
func (m *Model) StartFade(gen uint64) tea.Cmd {
	m.gen = gen
	return tick(gen)
}

// Advance steps the animation if msg belongs to the current fade. It
// returns the next tick, or nil when the fade is stale or settled.
func (m *Model) Advance(msg FadeMsg, ww reconcile.WakeWord) tea.Cmd {
	if msg.Gen != m.gen || !ww.Pending() || msg.Gen != ww.Generation() {
		return nil
	}
	m.level, m.vel = m.spring.Update(m.level, m.vel, 0)
	if m.level < 0.01 {
		m.level = 0
		return nil
	}
	return tick(msg.Gen)
}

// Level returns the current intensity in [0, 1].
func (m Model) Level() float64 {
	return min(max(m.level, 0), 1)
}

// View renders the banner, or nothing when it is hidden.
func (m Model) View(ww reconcile.WakeWord) string {
	if !ww.Visible {
		return ""
	}
	level := 1.0
	if ww.Pending() {
		level = m.Level()
	}
	fg := blend(theme.ColorBg, theme.ColorBright, level)
	bg := blend(theme.ColorBg, theme.ColorWakeWordBg, level)
	border := blend(theme.ColorBg, theme.ColorWakeWord, level)

	width := max(m.Width, 20)
	return lipgloss.NewStyle().
		Width(width - 2).
		Foreground(fg).
		Background(bg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Align(lipgloss.Center).
		Render(Text)
}

func blend(from, to lipgloss.Color, t float64) lipgloss.Color {
	a, err1 := colorful.Hex(string(from))
	b, err2 := colorful.Hex(string(to))
	if err1 != nil || err2 != nil {
		return to
	}
	return lipgloss.Color(a.BlendLab(b, t).Clamped().Hex())
}

func tick(gen uint64) tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return FadeMsg{Gen: gen}
	})
}
