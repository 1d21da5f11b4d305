package camera

import (
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/sightline/console/internal/reconcile"
)

func TestPlaceholderBeforeFirstFrame(t *testing.T) {
	m := New()
	m.Width, m.Height = 60, 12
	if v := m.View(reconcile.CameraFrame{}); !strings.Contains(v, Placeholder) {
		t.Errorf("expected placeholder:\n%s", v)
	}
}

func TestFrameHidesPlaceholder(t *testing.T) {
	m := New()
	m.Width, m.Height = 60, 12
	frame := reconcile.CameraFrame{
		Visible:    true,
		Seq:        3,
		MIME:       "image/png",
		Size:       128,
		ReceivedAt: time.Now(),
		Image:      image.NewRGBA(image.Rect(0, 0, 8, 8)),
	}
	v := m.View(frame)
	if strings.Contains(v, Placeholder) {
		t.Error("placeholder should be hidden once a frame arrives")
	}
	if !strings.Contains(v, "▀") {
		t.Error("frame should be drawn with half blocks")
	}
	if !strings.Contains(v, "#3") {
		t.Error("caption should carry the frame sequence")
	}
}

func TestUndecodableFrame(t *testing.T) {
	m := New()
	m.Width, m.Height = 60, 12
	v := m.View(reconcile.CameraFrame{Visible: true, DecodeErr: errors.New("bad jpeg")})
	if !strings.Contains(v, "bad jpeg") {
		t.Errorf("expected decode error summary:\n%s", v)
	}
}

func TestHalfBlocksFitsBox(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	out := HalfBlocks(img, 20, 10)
	lines := strings.Split(out, "\n")
	if len(lines) > 10 {
		t.Errorf("rows = %d, want <= 10", len(lines))
	}
	for i, l := range lines {
		if n := strings.Count(l, "▀"); n > 20 || n == 0 {
			t.Errorf("row %d has %d cells", i, n)
		}
	}
	if HalfBlocks(image.NewRGBA(image.Rectangle{}), 10, 10) != "" {
		t.Error("empty image should render nothing")
	}
}
