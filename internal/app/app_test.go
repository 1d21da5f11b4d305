package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sightline/console/internal/client"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/views/alerts"
)

type fakeAPI struct {
	startErr error
	stopErr  error
	voiceErr error
	commands []string
}

func (f *fakeAPI) StartSession(context.Context) (*client.SessionResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &client.SessionResponse{Success: true, SessionID: "3f2c9a10-aaaa"}, nil
}

func (f *fakeAPI) StopSession(context.Context) (*client.SessionResponse, error) {
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return &client.SessionResponse{Success: true}, nil
}

func (f *fakeAPI) SendVoiceCommand(_ context.Context, command string) (*client.VoiceCommandResponse, error) {
	f.commands = append(f.commands, command)
	if f.voiceErr != nil {
		return nil, f.voiceErr
	}
	return &client.VoiceCommandResponse{Success: true, Response: "ok"}, nil
}

type fakeStream struct {
	emitted []client.EventType
}

func (f *fakeStream) Listen(context.Context) tea.Cmd   { return nil }
func (f *fakeStream) ReadLoop(context.Context) tea.Cmd { return nil }
func (f *fakeStream) Emit(e client.EventType) error {
	f.emitted = append(f.emitted, e)
	return nil
}

func newTestModel(api SessionAPI, ws Stream) Model {
	m := New(ws, api, reconcile.FullBinding())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs cmd and feeds every resulting message back into the model.
// Only use it for commands that do not sleep.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	if msg == nil {
		return m
	}
	m, next := send(t, m, msg)
	return drain(t, m, next)
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestStartSessionOptimistic(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, cmd := send(t, m, keyRunes("s"))
	if cmd == nil {
		t.Fatal("start key should issue a request")
	}
	m = drain(t, m, cmd)

	if !m.State().Session.Active {
		t.Fatal("session should be active after a successful start")
	}
	if !strings.Contains(m.View(), "Active") {
		t.Error("status should read Active")
	}
	if len(m.Notices()) != 0 {
		t.Errorf("unexpected notices: %v", m.Notices())
	}

	// The authoritative stop overrides the optimistic start.
	m, _ = send(t, m, client.SessionStoppedMsg{})
	if m.State().Session.Active {
		t.Error("session_stopped should win")
	}
	if !m.State().Indicators().StartVisible {
		t.Error("start control should be visible again")
	}
}

func TestStartSessionApplicationError(t *testing.T) {
	api := &fakeAPI{startErr: &client.ApplicationError{Op: "POST /api/session/start", Status: 400, Message: "Session already active"}}
	m := newTestModel(api, nil)
	m, cmd := send(t, m, keyRunes("s"))
	m = drain(t, m, cmd)

	if m.State().Session.Active {
		t.Error("failed start must not change session state")
	}
	notices := m.Notices()
	if len(notices) != 1 || notices[0] != "Error: Session already active" {
		t.Fatalf("notices = %v", notices)
	}
	if !strings.Contains(m.View(), "Session already active") {
		t.Error("notice should be rendered")
	}
}

func TestStartSessionTransportError(t *testing.T) {
	api := &fakeAPI{startErr: &client.TransportError{Op: "POST /api/session/start", Err: errors.New("connection refused")}}
	m := newTestModel(api, nil)
	m, cmd := send(t, m, keyRunes("s"))
	m = drain(t, m, cmd)

	if m.State().Session.Active {
		t.Error("failed start must not change session state")
	}
	if n := m.Notices(); len(n) != 1 || n[0] != UnreachableNotice {
		t.Fatalf("notices = %v", n)
	}
}

func TestStopOnlyWhenActive(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	if _, cmd := send(t, m, keyRunes("x")); cmd != nil {
		t.Error("stop control is hidden while stopped")
	}
	m, _ = send(t, m, client.SessionStartedMsg{Payload: client.SessionStartedPayload{SessionID: "abc"}})
	if _, cmd := send(t, m, keyRunes("s")); cmd != nil {
		t.Error("start control is hidden while active")
	}
	m, cmd := send(t, m, keyRunes("x"))
	m = drain(t, m, cmd)
	if m.State().Session.Active {
		t.Error("stop should deactivate")
	}
}

func TestSessionPausedBlocksUntilDismissed(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, _ = send(t, m, client.SessionStartedMsg{})
	m, _ = send(t, m, client.SessionPausedMsg{Payload: client.SessionPausedPayload{Reason: "inactivity"}})

	if m.State().Session.Active {
		t.Fatal("pause should deactivate")
	}
	if n := m.Notices(); len(n) != 1 || n[0] != reconcile.PausedNotice {
		t.Fatalf("notices = %v", n)
	}
	if _, cmd := send(t, m, keyRunes("s")); cmd != nil {
		t.Error("keys are blocked while the notice is up")
	}

	// Events keep applying under the notice.
	m, _ = send(t, m, client.AlertMsg{Payload: client.AlertPayload{Priority: "important", Message: "person ahead"}})
	if m.State().Alerts.Len() != 1 {
		t.Error("alert should apply while a notice is shown")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.Notices()) != 0 {
		t.Fatal("enter should dismiss the notice")
	}
	if !m.State().Indicators().StartVisible {
		t.Error("start control should be re-enabled")
	}
	if _, cmd := send(t, m, keyRunes("s")); cmd == nil {
		t.Error("start should work after dismissing")
	}
}

func TestReplayedEventsIdempotent(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, _ = send(t, m, client.SessionStartedMsg{})
	m, _ = send(t, m, client.SessionStoppedMsg{})
	first := m.View()
	m, _ = send(t, m, client.SessionStoppedMsg{})
	if m.View() != first {
		t.Error("replaying session_stopped changed the view")
	}
}

func TestAlertReplacesPlaceholder(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	if !strings.Contains(m.View(), alerts.Placeholder) {
		t.Fatal("placeholder expected before the first alert")
	}
	m, _ = send(t, m, client.AlertMsg{Payload: client.AlertPayload{
		Priority: "critical", Message: "door open", Timestamp: "2026-03-01T10:00:00",
	}})
	v := m.View()
	if strings.Contains(v, alerts.Placeholder) {
		t.Error("placeholder should be gone")
	}
	if !strings.Contains(v, "door open") || !strings.Contains(v, "CRITICAL") {
		t.Errorf("alert not rendered:\n%s", v)
	}
}

func TestWakeWordCycle(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, _ = send(t, m, client.WakeWordDetectedMsg{})
	if !m.State().WakeWord.Visible {
		t.Fatal("banner should show immediately")
	}

	m, cmd := send(t, m, client.VoiceCommandMsg{Payload: client.VoiceCommandPayload{Command: "read sign"}})
	if cmd == nil {
		t.Fatal("voice command should arm a hide timer")
	}
	stale := m.State().WakeWord.Generation()

	// Re-detection inside the grace window cancels the pending hide.
	m, _ = send(t, m, client.WakeWordDetectedMsg{})
	m, _ = send(t, m, hideWakeWordMsg{gen: stale})
	if !m.State().WakeWord.Visible {
		t.Fatal("stale hide must not hide the banner")
	}

	m, _ = send(t, m, client.VoiceCommandMsg{})
	m, _ = send(t, m, hideWakeWordMsg{gen: m.State().WakeWord.Generation()})
	if m.State().WakeWord.Visible {
		t.Error("current hide should hide the banner")
	}
}

func TestConnectPrimesFrameOnce(t *testing.T) {
	ws := &fakeStream{}
	m := newTestModel(&fakeAPI{}, ws)

	m, cmd := send(t, m, client.WSConnectedMsg{})
	m = drain(t, m, cmd)
	m, _ = send(t, m, client.WSDisconnectedMsg{Err: errors.New("eof")})
	m, cmd = send(t, m, client.WSConnectedMsg{})
	drain(t, m, cmd)

	if len(ws.emitted) != 1 || ws.emitted[0] != client.RequestGetFrame {
		t.Errorf("emitted = %v, want one get_frame", ws.emitted)
	}
}

func TestNoFramePullWithoutCamera(t *testing.T) {
	ws := &fakeStream{}
	m := New(ws, &fakeAPI{}, reconcile.ViewBinding{Status: true, Alerts: true})
	m, cmd := send(t, m, client.WSConnectedMsg{})
	drain(t, m, cmd)
	if len(ws.emitted) != 0 {
		t.Errorf("emitted = %v, want none", ws.emitted)
	}
}

func TestVoicePrompt(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, nil)

	m, _ = send(t, m, keyRunes("v"))
	if m.overlay != OverlayPrompt {
		t.Fatal("v should open the prompt")
	}
	m, _ = send(t, m, keyRunes("what is ahead"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.overlay != OverlayNone {
		t.Error("enter should close the prompt")
	}
	m = drain(t, m, cmd)

	if len(api.commands) != 1 || api.commands[0] != "what is ahead" {
		t.Fatalf("commands = %v", api.commands)
	}
	if len(m.Notices()) != 0 {
		t.Error("voice command responses are diagnostic only")
	}
}

func TestVoicePromptEmptyIsDiscarded(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, nil)
	m, _ = send(t, m, keyRunes("v"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)
	if len(api.commands) != 0 {
		t.Errorf("empty command should not be sent, got %v", api.commands)
	}
}

func TestVoiceCommandErrorIsNotSurfaced(t *testing.T) {
	api := &fakeAPI{voiceErr: &client.ApplicationError{Status: 400, Message: "No active session"}}
	m := newTestModel(api, nil)
	m, _ = send(t, m, keyRunes("v"))
	m, _ = send(t, m, keyRunes("hi"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)
	if len(m.Notices()) != 0 {
		t.Errorf("voice errors go to diagnostics only, got %v", m.Notices())
	}
}

func TestDisconnectedBanner(t *testing.T) {
	m := newTestModel(nil, nil)
	if !strings.Contains(m.View(), "DISCONNECTED") {
		t.Error("view should flag the missing connection")
	}
	m, _ = send(t, m, client.WSConnectedMsg{})
	if strings.Contains(m.View(), "DISCONNECTED") {
		t.Error("banner should clear once connected")
	}
}

func TestAlertDetailOverlay(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	if m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter}); m.overlay != OverlayNone {
		t.Fatal("enter with no alerts should do nothing")
	}

	m, _ = send(t, m, client.AlertMsg{Payload: client.AlertPayload{Priority: "informational", Message: "bench in view"}})
	m, _ = send(t, m, client.AlertMsg{Payload: client.AlertPayload{Priority: "critical", Message: "STAIRS detected close distance from your front!"}})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.overlay != OverlayDetail {
		t.Fatal("enter should open the alert detail")
	}
	if v := m.View(); !strings.Contains(v, "Alert 1 of 2") || !strings.Contains(v, "STAIRS detected") {
		t.Errorf("detail should show the newest alert:\n%s", v)
	}

	m, _ = send(t, m, keyRunes("j"))
	if v := m.View(); !strings.Contains(v, "Alert 2 of 2") || !strings.Contains(v, "bench in view") {
		t.Errorf("j should move to the older alert:\n%s", v)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.overlay != OverlayNone {
		t.Error("esc should close the detail")
	}
}

func TestControlFollowsSessionWhileRequestInFlight(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, cmd := send(t, m, keyRunes("s"))
	if cmd == nil {
		t.Fatal("start key should issue a request")
	}

	// The pushed event lands before the HTTP result.
	m, _ = send(t, m, client.SessionStartedMsg{Payload: client.SessionStartedPayload{SessionID: "abc"}})
	v := m.View()
	if !strings.Contains(v, "[x] Stop") {
		t.Errorf("stop control should render once the session is active:\n%s", v)
	}
	if strings.Contains(v, "[s] Start") {
		t.Errorf("start control should be gone:\n%s", v)
	}

	m = drain(t, m, cmd)
	if !m.State().Session.Active || len(m.Notices()) != 0 {
		t.Errorf("active=%v notices=%v", m.State().Session.Active, m.Notices())
	}
}

func TestRepeatStartIgnoredWhileInFlight(t *testing.T) {
	m := newTestModel(&fakeAPI{}, nil)
	m, first := send(t, m, keyRunes("s"))
	if first == nil {
		t.Fatal("first press should issue a request")
	}
	m, second := send(t, m, keyRunes("s"))
	if second != nil {
		t.Error("second press before the reply should be dropped")
	}
	m = drain(t, m, first)
	if len(m.Notices()) != 0 {
		t.Errorf("notices = %v", m.Notices())
	}
	if _, cmd := send(t, m, keyRunes("x")); cmd == nil {
		t.Error("stop should be accepted once the start reply landed")
	}
}
