// Package camera renders the live camera feed as half-block cells, or a
// placeholder until the first frame arrives.
package camera

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
)

// Placeholder is shown while no frame has been received.
const Placeholder = "Camera feed will appear when a session starts"

// Model holds the camera panel's size.
type Model struct {
	Width  int
	Height int
}

// New creates a camera panel model.
func New() Model {
	return Model{}
}

// View renders the frame or the placeholder.
func (m Model) View(frame reconcile.CameraFrame) string {
	width := max(m.Width, 24)
	height := max(m.Height, 6)
	innerW := width - 4
	innerH := height - 4 // title + caption + border

	title := theme.StyleHeader.Render("CAMERA")

	if !frame.Visible {
		body := lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center,
			theme.StyleDimmed.Render(Placeholder))
		return theme.StylePanel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	var body string
	if frame.Image != nil {
		body = HalfBlocks(frame.Image, innerW, innerH)
	} else {
		reason := "undecodable frame"
		if frame.DecodeErr != nil {
			reason = frame.DecodeErr.Error()
		}
		body = lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center,
			theme.StyleError.Render(reason))
	}

	caption := theme.StyleDimmed.Render(fmt.Sprintf("#%d  %s  %d bytes  %s",
		frame.Seq, frame.MIME, frame.Size, frame.ReceivedAt.Format(time.TimeOnly)))

	return theme.StylePanel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body, caption))
}

// HalfBlocks draws img into cols x rows cells. Each cell shows two
// vertically stacked pixels using the upper-half block with foreground for
// the top pixel and background for the bottom one. Sampling is nearest
// neighbour and keeps the aspect ratio.
func HalfBlocks(img image.Image, cols, rows int) string {
	b := img.Bounds()
	if b.Empty() || cols < 1 || rows < 1 {
		return ""
	}

	// Pixel grid is cols x (rows*2); fit the image inside it.
	scale := min(float64(cols)/float64(b.Dx()), float64(rows*2)/float64(b.Dy()))
	outW := max(int(float64(b.Dx())*scale), 1)
	outH := max(int(float64(b.Dy())*scale), 2)

	sample := func(x, y int) lipgloss.Color {
		sx := b.Min.X + x*b.Dx()/outW
		sy := b.Min.Y + y*b.Dy()/outH
		r, g, bl, _ := img.At(sx, sy).RGBA()
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
	}

	var sb strings.Builder
	for y := 0; y+1 < outH; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < outW; x++ {
			sb.WriteString(lipgloss.NewStyle().
				Foreground(sample(x, y)).
				Background(sample(x, y+1)).
				Render("▀"))
		}
	}
	return sb.String()
}
