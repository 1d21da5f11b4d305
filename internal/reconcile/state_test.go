package reconcile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func TestAlertLogNewestFirst(t *testing.T) {
	l := NewAlertLog(AlertLogCapacity)
	for i := 0; i < 10; i++ {
		l.Push(AlertEntry{Message: fmt.Sprintf("m%d", i)})
		if l.Len() != i+1 {
			t.Fatalf("Len() = %d after %d pushes", l.Len(), i+1)
		}
	}
	got := l.Entries()
	for i, e := range got {
		want := fmt.Sprintf("m%d", 9-i)
		if e.Message != want {
			t.Errorf("entry %d = %q, want %q", i, e.Message, want)
		}
	}
}

func TestAlertLogBounded(t *testing.T) {
	l := NewAlertLog(AlertLogCapacity)
	for i := 0; i < 3*AlertLogCapacity+7; i++ {
		l.Push(AlertEntry{Message: fmt.Sprintf("m%d", i)})
		if l.Len() > AlertLogCapacity {
			t.Fatalf("Len() = %d exceeds capacity", l.Len())
		}
		if got := l.At(0).Message; got != fmt.Sprintf("m%d", i) {
			t.Fatalf("newest = %q after push %d", got, i)
		}
	}
}

func TestAlertLogEvictionReported(t *testing.T) {
	l := NewAlertLog(2)
	if l.Push(AlertEntry{}) || l.Push(AlertEntry{}) {
		t.Fatal("no eviction expected below capacity")
	}
	if !l.Push(AlertEntry{}) {
		t.Fatal("expected eviction at capacity")
	}
}

func TestFiftyOneAlertsEvictOldest(t *testing.T) {
	s := New(FullBinding())
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 51; i++ {
		ts := base.Add(time.Duration(i) * time.Second).Format(time.RFC3339)
		s.Alert("informational", fmt.Sprintf("alert %d", i), ts)
	}
	if s.Alerts.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", s.Alerts.Len())
	}
	if got := s.Alerts.At(0).Message; got != "alert 50" {
		t.Errorf("newest = %q, want %q", got, "alert 50")
	}
	if got := s.Alerts.At(49).Message; got != "alert 1" {
		t.Errorf("oldest = %q, want %q (alert 0 evicted)", got, "alert 1")
	}
	if !s.Alerts.At(0).Timestamp.Equal(base.Add(50 * time.Second)) {
		t.Errorf("newest timestamp = %v", s.Alerts.At(0).Timestamp)
	}
}

func TestSingleCriticalAlert(t *testing.T) {
	s := New(FullBinding())
	ts := "2026-03-01T10:00:00"
	s.Alert("critical", "door open", ts)

	if s.Alerts.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Alerts.Len())
	}
	e := s.Alerts.At(0)
	if e.Priority != PriorityCritical {
		t.Errorf("Priority = %q, want critical", e.Priority)
	}
	if e.Message != "door open" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Timestamp.IsZero() {
		t.Error("zone-less ISO timestamp should parse")
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"critical", PriorityCritical},
		{"IMPORTANT", PriorityImportant},
		{"informational", PriorityInformational},
		{"", PriorityOther},
		{"urgent", PriorityOther},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMalformedAlertBestEffort(t *testing.T) {
	s := New(FullBinding())
	s.Alert("", "", "not a time")
	e := s.Alerts.At(0)
	if e.Priority != PriorityOther {
		t.Errorf("Priority = %q, want other", e.Priority)
	}
	if !e.Timestamp.IsZero() {
		t.Errorf("Timestamp = %v, want zero", e.Timestamp)
	}
	if e.Label() != "OTHER" {
		t.Errorf("Label() = %q", e.Label())
	}
}

func TestSessionEventsIdempotent(t *testing.T) {
	s := New(FullBinding())

	s.SessionStarted("abc")
	first := s.Indicators()
	s.SessionStarted("abc")
	if s.Indicators() != first {
		t.Error("replaying session_started changed indicators")
	}
	if !first.Active || first.Text != "Active" || !first.StopVisible || first.StartVisible {
		t.Errorf("active indicators = %+v", first)
	}

	s.SessionStopped()
	s.SessionStopped()
	got := s.Indicators()
	if s.Session.Active {
		t.Error("session should be inactive")
	}
	if got != IndicatorsFor(false) {
		t.Errorf("stopped indicators = %+v", got)
	}
	if got.Text != "Stopped" || !got.StartVisible || got.StopVisible {
		t.Errorf("stopped indicators = %+v", got)
	}
}

func TestOptimisticThenAuthoritative(t *testing.T) {
	tests := []struct {
		name  string
		steps []func(*UiState)
	}{
		{
			name: "optimistic start then started then stopped",
			steps: []func(*UiState){
				func(s *UiState) { s.SetSessionActive(true) },
				func(s *UiState) { s.SessionStarted("x") },
				func(s *UiState) { s.SessionStopped() },
			},
		},
		{
			name: "started, optimistic start, stopped",
			steps: []func(*UiState){
				func(s *UiState) { s.SessionStarted("x") },
				func(s *UiState) { s.SetSessionActive(true) },
				func(s *UiState) { s.SessionStopped() },
			},
		},
		{
			name: "started, stopped, late optimistic stop",
			steps: []func(*UiState){
				func(s *UiState) { s.SessionStarted("x") },
				func(s *UiState) { s.SessionStopped() },
				func(s *UiState) { s.SetSessionActive(false) },
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(FullBinding())
			for _, step := range tt.steps {
				step(s)
			}
			if s.Session.Active {
				t.Error("expected inactive")
			}
			if s.Indicators() != IndicatorsFor(false) {
				t.Errorf("indicators = %+v", s.Indicators())
			}
		})
	}
}

func TestSessionPausedNotice(t *testing.T) {
	s := New(FullBinding())
	s.SessionStarted("abc")

	eff := s.SessionPaused()
	if s.Session.Active {
		t.Error("paused session should be inactive")
	}
	if eff.Notice != PausedNotice {
		t.Errorf("Notice = %q, want %q", eff.Notice, PausedNotice)
	}
	if !s.Indicators().StartVisible {
		t.Error("start control should be visible after pause")
	}
	if stop := s.SessionStopped(); stop.Notice != "" {
		t.Errorf("explicit stop should not raise a notice, got %q", stop.Notice)
	}
}

func TestWakeWordShowAndTimedHide(t *testing.T) {
	s := New(FullBinding())
	s.WakeWordDetected()
	if !s.WakeWord.Visible || !s.WakeWord.Active {
		t.Fatal("banner should show immediately")
	}
	if s.WakeWord.Pending() {
		t.Fatal("no hide should be pending after detection")
	}

	eff := s.VoiceCommand()
	if eff.Hide == nil {
		t.Fatal("voice command should arm a hide")
	}
	if eff.Hide.After != WakeWordGrace {
		t.Errorf("After = %v, want %v", eff.Hide.After, WakeWordGrace)
	}
	if s.WakeWord.Active {
		t.Error("status should be idle right after the voice command")
	}
	if !s.WakeWord.Visible {
		t.Error("banner should linger during the grace window")
	}

	if !s.ExpireWakeWord(eff.Hide.Gen) {
		t.Fatal("expected hide to apply")
	}
	if s.WakeWord.Visible {
		t.Error("banner should be hidden after the grace window")
	}
}

func TestWakeWordRedetectCancelsHide(t *testing.T) {
	s := New(FullBinding())
	s.WakeWordDetected()
	eff := s.VoiceCommand()

	s.WakeWordDetected()
	if s.ExpireWakeWord(eff.Hide.Gen) {
		t.Fatal("stale hide should be ignored")
	}
	if !s.WakeWord.Visible {
		t.Fatal("banner should stay visible")
	}

	// The next cycle still works.
	eff2 := s.VoiceCommand()
	if eff2.Hide == nil || eff2.Hide.Gen == eff.Hide.Gen {
		t.Fatalf("expected a fresh hide, got %+v", eff2.Hide)
	}
	if !s.ExpireWakeWord(eff2.Hide.Gen) || s.WakeWord.Visible {
		t.Fatal("fresh hide should apply")
	}
}

func TestWakeWordSecondVoiceCommandReplacesHide(t *testing.T) {
	s := New(FullBinding())
	s.WakeWordDetected()
	first := s.VoiceCommand()
	second := s.VoiceCommand()
	if second.Hide == nil {
		t.Fatal("banner still visible, hide should be re-armed")
	}
	if s.ExpireWakeWord(first.Hide.Gen) {
		t.Error("replaced hide should not fire")
	}
	if !s.ExpireWakeWord(second.Hide.Gen) {
		t.Error("replacement hide should fire")
	}
	if s.ExpireWakeWord(second.Hide.Gen) {
		t.Error("hide should fire at most once")
	}
}

func TestVoiceCommandWithoutBanner(t *testing.T) {
	s := New(FullBinding())
	if eff := s.VoiceCommand(); eff.Hide != nil {
		t.Error("nothing to hide, no timer expected")
	}
}

func TestFrameReplacesAndShows(t *testing.T) {
	s := New(FullBinding())
	if s.Camera.Visible {
		t.Fatal("placeholder should show before any frame")
	}

	s.Frame(pngDataURL(t, 4, 2))
	if !s.Camera.Visible || s.Camera.Image == nil {
		t.Fatalf("frame not applied: %+v", s.Camera)
	}
	if s.Camera.MIME != "image/png" {
		t.Errorf("MIME = %q", s.Camera.MIME)
	}
	if b := s.Camera.Image.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}

	s.Frame("data:image/jpeg;base64,@@@")
	if s.Camera.Seq != 2 {
		t.Errorf("Seq = %d, want 2", s.Camera.Seq)
	}
	if s.Camera.Image != nil || s.Camera.DecodeErr == nil {
		t.Error("undecodable frame should replace the old one with an error")
	}
	if !s.Camera.Visible {
		t.Error("feed stays visible for undecodable frames")
	}
}

func TestOversizedFrameRejected(t *testing.T) {
	old := maxFramePixels
	maxFramePixels = 4
	defer func() { maxFramePixels = old }()

	s := New(FullBinding())
	s.Frame(pngDataURL(t, 2, 2))
	if s.Camera.Image == nil {
		t.Fatal("frame at the cap should decode")
	}
	s.Frame(pngDataURL(t, 3, 2))
	if s.Camera.Image != nil || s.Camera.DecodeErr == nil {
		t.Errorf("oversized frame should be rejected: %+v", s.Camera)
	}
	if !s.Camera.Visible {
		t.Error("feed stays visible for rejected frames")
	}
}

func TestAbsentRegionsAreNoOps(t *testing.T) {
	s := New(ViewBinding{Status: true})
	s.Alert("critical", "x", "")
	s.Frame(pngDataURL(t, 1, 1))
	s.WakeWordDetected()
	if eff := s.VoiceCommand(); eff.Hide != nil {
		t.Error("no banner bound, no hide expected")
	}
	if s.Alerts.Len() != 0 || s.Camera.Visible || s.WakeWord.Visible {
		t.Errorf("unbound regions changed: alerts=%d camera=%v wake=%v",
			s.Alerts.Len(), s.Camera.Visible, s.WakeWord.Visible)
	}
	if s.WantsFramePull() {
		t.Error("no camera bound, no pull expected")
	}

	s.SessionStarted("id")
	if !s.Session.Active {
		t.Error("session state is tracked regardless of binding")
	}
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
