package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sightline/console/internal/client"
	"github.com/sightline/console/internal/views/debug"
)

// UnreachableNotice is shown when a session request gets no response.
const UnreachableNotice = "Could not reach server"

// SessionAPI is the request API the controller drives.
type SessionAPI interface {
	StartSession(ctx context.Context) (*client.SessionResponse, error)
	StopSession(ctx context.Context) (*client.SessionResponse, error)
	SendVoiceCommand(ctx context.Context, command string) (*client.VoiceCommandResponse, error)
}

type sessionAction int

const (
	actionStart sessionAction = iota
	actionStop
)

func (a sessionAction) String() string {
	if a == actionStart {
		return "start"
	}
	return "stop"
}

// sessionResultMsg carries the outcome of a start or stop request.
type sessionResultMsg struct {
	action sessionAction
	resp   *client.SessionResponse
	err    error
}

// voiceResultMsg carries the outcome of a voice command request.
type voiceResultMsg struct {
	command string
	resp    *client.VoiceCommandResponse
	err     error
}

func (m Model) startSession() tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		resp, err := api.StartSession(ctx)
		return sessionResultMsg{action: actionStart, resp: resp, err: err}
	}
}

func (m Model) stopSession() tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		resp, err := api.StopSession(ctx)
		return sessionResultMsg{action: actionStop, resp: resp, err: err}
	}
}

// sendVoiceCommand posts text unless it is blank.
func (m Model) sendVoiceCommand(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		resp, err := api.SendVoiceCommand(ctx, text)
		return voiceResultMsg{command: text, resp: resp, err: err}
	}
}

// handleSessionResult applies the optimistic update on success. Failures
// raise a notice and leave the session state alone.
func (m Model) handleSessionResult(msg sessionResultMsg) (Model, tea.Cmd) {
	m.statusBar.Busy = ""

	if msg.err != nil {
		m.debug.Addf(debug.KindError, "%s session: %v", msg.action, msg.err)
		slog.Warn("session request failed", "action", msg.action.String(), "err", msg.err)
		m.pushNotice(sessionErrorNotice(msg.err))
		return m, nil
	}

	active := msg.action == actionStart
	m.ui.SetSessionActive(active)
	if active && msg.resp != nil && msg.resp.SessionID != "" {
		m.ui.Session.ID = msg.resp.SessionID
	}
	m.debug.Addf(debug.KindHTTP, "session %s ok", msg.action)
	slog.Info("session request ok", "action", msg.action.String())
	m.syncViews()
	return m, nil
}

func (m Model) handleVoiceResult(msg voiceResultMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.debug.Addf(debug.KindError, "voice command %q: %v", msg.command, msg.err)
		slog.Warn("voice command failed", "command", msg.command, "err", msg.err)
		return m, nil
	}
	resp := ""
	if msg.resp != nil {
		resp = msg.resp.Response
	}
	m.debug.Addf(debug.KindHTTP, "voice command %q: %s", msg.command, resp)
	slog.Debug("voice command response", "command", msg.command, "response", resp)
	return m, nil
}

func sessionErrorNotice(err error) string {
	var appErr *client.ApplicationError
	if errors.As(err, &appErr) {
		return "Error: " + appErr.Message
	}
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return UnreachableNotice
	}
	return "Error: " + err.Error()
}
