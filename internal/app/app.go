package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sightline/console/internal/client"
	"github.com/sightline/console/internal/reconcile"
	"github.com/sightline/console/internal/theme"
	"github.com/sightline/console/internal/views/alerts"
	"github.com/sightline/console/internal/views/camera"
	"github.com/sightline/console/internal/views/debug"
	"github.com/sightline/console/internal/views/detail"
	"github.com/sightline/console/internal/views/help"
	"github.com/sightline/console/internal/views/status"
	"github.com/sightline/console/internal/views/wakeword"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayPrompt
	OverlayDebug
	OverlayHelp
	OverlayDetail
)

// Stream is the pushed-event channel.
type Stream interface {
	Listen(ctx context.Context) tea.Cmd
	ReadLoop(ctx context.Context) tea.Cmd
	Emit(event client.EventType) error
}

// hideWakeWordMsg fires when a wake-word hide timer elapses.
type hideWakeWordMsg struct{ gen uint64 }

// emitResultMsg reports a failed outbound request.
type emitResultMsg struct {
	event client.EventType
	err   error
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     Stream
	api    SessionAPI
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	ui *reconcile.UiState

	// Sub-views.
	statusBar status.Model
	alerts    alerts.Model
	camera    camera.Model
	banner    wakeword.Model
	debug     debug.Model
	detail    detail.Model
	help      *help.Model

	overlay Overlay
	prompt  textinput.Model
	notices []string // blocking notices, oldest first

	connected   bool
	framePulled bool
}

// New creates the root model. binding says which dashboard regions exist.
func New(ws Stream, api SessionAPI, binding reconcile.ViewBinding) Model {
	ctx, cancel := context.WithCancel(context.Background())

	ti := textinput.New()
	ti.Placeholder = "e.g. what is in front of me"
	ti.CharLimit = 500
	ti.Prompt = "> "

	return Model{
		ws:        ws,
		api:       api,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		ui:        reconcile.New(binding),
		statusBar: status.New(),
		alerts:    alerts.New(),
		camera:    camera.New(),
		banner:    wakeword.New(),
		debug:     debug.New(),
		help:      help.New(),
		prompt:    ti,
	}
}

// State exposes the reconciled UI state.
func (m Model) State() *reconcile.UiState { return m.ui }

// Notices returns the pending blocking notices, oldest first.
func (m Model) Notices() []string { return m.notices }

// Init starts the WebSocket connection.
func (m Model) Init() tea.Cmd {
	return m.ws.Listen(m.ctx)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.WSConnectedMsg:
		m.connected = true
		m.statusBar.Connected = true
		m.debug.Addf(debug.KindWS, "connect")
		slog.Info("stream connected")
		cmds := []tea.Cmd{m.next()}
		if !m.framePulled && m.ui.WantsFramePull() {
			m.framePulled = true
			cmds = append(cmds, m.emit(client.RequestGetFrame))
		}
		return m, tea.Batch(cmds...)

	case client.WSDisconnectedMsg:
		m.connected = false
		m.statusBar.Connected = false
		m.debug.Addf(debug.KindWS, "disconnected: %v", msg.Err)
		slog.Warn("stream disconnected", "err", msg.Err)
		if m.ws == nil {
			return m, nil
		}
		return m, m.ws.Listen(m.ctx)

	case client.ConnectedMsg:
		m.debug.Addf(debug.KindEvent, "connected: %s", msg.Payload.Status)
		return m, m.next()

	case client.SessionStartedMsg:
		m.debug.Addf(debug.KindEvent, "session_started %s", msg.Payload.SessionID)
		return m, tea.Batch(m.apply(m.ui.SessionStarted(msg.Payload.SessionID)), m.next())

	case client.SessionStoppedMsg:
		m.debug.Addf(debug.KindEvent, "session_stopped")
		return m, tea.Batch(m.apply(m.ui.SessionStopped()), m.next())

	case client.SessionPausedMsg:
		m.debug.Addf(debug.KindEvent, "session_paused reason=%s", msg.Payload.Reason)
		return m, tea.Batch(m.apply(m.ui.SessionPaused()), m.next())

	case client.AlertMsg:
		p := msg.Payload
		slog.Debug("alert", "priority", p.Priority, "message", p.Message)
		return m, tea.Batch(m.apply(m.ui.Alert(p.Priority, p.Message, p.Timestamp)), m.next())

	case client.WakeWordDetectedMsg:
		m.debug.Addf(debug.KindEvent, "wake_word_detected")
		m.banner.Reset()
		return m, tea.Batch(m.apply(m.ui.WakeWordDetected()), m.next())

	case client.VoiceCommandMsg:
		m.debug.Addf(debug.KindEvent, "voice_command %q", msg.Payload.Command)
		return m, tea.Batch(m.apply(m.ui.VoiceCommand()), m.next())

	case client.FrameMsg:
		return m, tea.Batch(m.apply(m.ui.Frame(msg.Payload.Data)), m.next())

	case hideWakeWordMsg:
		m.ui.ExpireWakeWord(msg.gen)
		return m, nil

	case wakeword.FadeMsg:
		return m, m.banner.Advance(msg, m.ui.WakeWord)

	case emitResultMsg:
		m.debug.Addf(debug.KindError, "emit %s: %v", msg.event, msg.err)
		return m, nil

	case sessionResultMsg:
		return m.handleSessionResult(msg)

	case voiceResultMsg:
		return m.handleVoiceResult(msg)
	}

	if m.overlay == OverlayPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply carries out a transition's deferred work and refreshes the views
// that mirror UiState.
func (m *Model) apply(eff reconcile.Effect) tea.Cmd {
	m.syncViews()
	if eff.Notice != "" {
		m.pushNotice(eff.Notice)
	}
	if eff.Hide == nil {
		return nil
	}
	gen := eff.Hide.Gen
	return tea.Batch(
		tea.Tick(eff.Hide.After, func(time.Time) tea.Msg { return hideWakeWordMsg{gen: gen} }),
		m.banner.StartFade(gen),
	)
}

func (m *Model) syncViews() {
	m.statusBar.Indicators = m.ui.Indicators()
	m.statusBar.SessionID = m.ui.Session.ID
}

func (m *Model) pushNotice(text string) {
	m.notices = append(m.notices, text)
}

func (m Model) next() tea.Cmd {
	if m.ws == nil {
		return nil
	}
	return m.ws.ReadLoop(m.ctx)
}

func (m Model) emit(event client.EventType) tea.Cmd {
	ws := m.ws
	if ws == nil {
		return nil
	}
	return func() tea.Msg {
		if err := ws.Emit(event); err != nil {
			return emitResultMsg{event: event, err: err}
		}
		return nil
	}
}

func (m *Model) layout() {
	m.statusBar.Width = m.width
	m.banner.Width = m.width
	bodyH := max(m.height-6, 8)
	if m.width >= 100 {
		m.camera.Width = m.width / 2
		m.alerts.Width = m.width - m.camera.Width
		m.camera.Height = bodyH
		m.alerts.Height = bodyH
	} else {
		m.camera.Width = m.width
		m.alerts.Width = m.width
		m.camera.Height = bodyH / 2
		m.alerts.Height = bodyH - bodyH/2
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.cancel()
		return m, tea.Quit
	}

	// A notice blocks everything until dismissed.
	if len(m.notices) > 0 {
		if key.Matches(msg, m.keys.Enter) || key.Matches(msg, m.keys.Escape) {
			m.notices = m.notices[1:]
		}
		return m, nil
	}

	switch m.overlay {
	case OverlayPrompt:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.closePrompt()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			text := m.prompt.Value()
			m.closePrompt()
			return m, m.sendVoiceCommand(text)
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd

	case OverlayDebug:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil

	case OverlayHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) {
			m.overlay = OverlayNone
		}
		return m, nil

	case OverlayDetail:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.alerts.ScrollUp(1)
			m.detail = detail.New(m.ui.Alerts, m.alerts.Offset)
		case key.Matches(msg, m.keys.Down):
			m.alerts.ScrollDown(1, m.ui.Alerts.Len())
			m.detail = detail.New(m.ui.Alerts, m.alerts.Offset)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		if !m.ui.Indicators().StartVisible || m.api == nil || m.statusBar.Busy != "" {
			return m, nil
		}
		m.statusBar.Busy = "starting"
		return m, m.startSession()

	case key.Matches(msg, m.keys.Stop):
		if !m.ui.Indicators().StopVisible || m.api == nil || m.statusBar.Busy != "" {
			return m, nil
		}
		m.statusBar.Busy = "stopping"
		return m, m.stopSession()

	case key.Matches(msg, m.keys.Voice):
		if m.api == nil {
			return m, nil
		}
		m.overlay = OverlayPrompt
		m.prompt.SetValue("")
		return m, m.prompt.Focus()

	case key.Matches(msg, m.keys.Up):
		m.alerts.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.alerts.ScrollDown(1, m.ui.Alerts.Len())
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if !m.ui.Binding().Alerts || m.ui.Alerts.Len() == 0 {
			return m, nil
		}
		m.detail = detail.New(m.ui.Alerts, m.alerts.Offset)
		m.overlay = OverlayDetail
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	}

	return m, nil
}

func (m *Model) closePrompt() {
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.overlay = OverlayNone
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if len(m.notices) > 0 {
		return m.place(m.renderNotice())
	}
	switch m.overlay {
	case OverlayPrompt:
		return m.place(m.renderPrompt())
	case OverlayDebug:
		return m.place(m.debug.View(m.width-4, m.height-2))
	case OverlayHelp:
		return m.place(m.help.View(m.keys.Bindings(), m.width-4))
	case OverlayDetail:
		return m.place(m.detail.View())
	}

	binding := m.ui.Binding()
	var sections []string
	if binding.Status {
		sections = append(sections, m.statusBar.View())
	}
	if !m.connected {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorDanger).Bold(true).
			Render("  DISCONNECTED · Reconnecting..."))
	}
	if binding.WakeWord {
		if b := m.banner.View(m.ui.WakeWord); b != "" {
			sections = append(sections, b)
		}
	}

	var panels []string
	if binding.Camera {
		panels = append(panels, m.camera.View(m.ui.Camera))
	}
	if binding.Alerts {
		panels = append(panels, m.alerts.View(m.ui.Alerts))
	}
	if len(panels) > 0 {
		if m.width >= 100 {
			sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, panels...))
		} else {
			sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, panels...))
		}
	}

	sections = append(sections,
		theme.StyleDimmed.Render("  s:start  x:stop  v:voice  j/k:alerts  enter:details  d:diagnostics  ?:help  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderNotice() string {
	body := theme.StyleBold.Render(m.notices[0])
	hint := "enter:ok"
	if n := len(m.notices) - 1; n > 0 {
		hint += theme.StyleDimmed.Render("  (+" + strconv.Itoa(n) + " more)")
	}
	return theme.StyleOverlay.
		BorderForeground(theme.ColorWarning).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, "", theme.StyleDimmed.Render(hint)))
}

func (m Model) renderPrompt() string {
	title := theme.StyleHeader.Render("Enter voice command:")
	hint := theme.StyleDimmed.Render("enter:send  esc:cancel")
	return theme.StyleOverlay.
		Width(min(max(m.width-8, 30), 80)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.prompt.View(), "", hint))
}
