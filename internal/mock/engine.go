// Package mock simulates the Sightline monitoring engine: a single
// session that produces alerts, camera frames, and wake-word cycles.
package mock

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sightline/console/internal/config"
	"github.com/sightline/console/internal/ws"
)

// Error is an engine failure with the HTTP status it maps to.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string   { return e.Msg }
func (e *Error) StatusCode() int { return e.Status }

var (
	ErrAlreadyActive = &Error{Status: http.StatusBadRequest, Msg: "Session already active"}
	ErrNoSession     = &Error{Status: http.StatusBadRequest, Msg: "No active session"}
	ErrCamera        = &Error{Status: http.StatusInternalServerError, Msg: "Could not start camera"}
)

var spokenCommands = []string{
	"what's in front of me",
	"read this",
	"who is here",
	"is the traffic light red",
	"describe the room",
}

var scenes = []string{
	"A hallway with a door on the right and a chair ahead",
	"A street crossing with a parked car on the left",
	"An office with two people near a desk",
}

// Broadcaster delivers events to every connected client.
type Broadcaster interface {
	Broadcast(t ws.MessageType, payload interface{})
}

type Engine struct {
	cfg config.MockConfig
	out Broadcaster
	now func() time.Time

	mu           sync.Mutex
	rng          *rand.Rand
	active       bool
	sessionID    string
	cancel       context.CancelFunc
	lastActivity time.Time
	alertsPaused bool
	frameSeq     int
	gate         *alertGate
}

func NewEngine(cfg config.MockConfig, out Broadcaster) *Engine {
	return &Engine{
		cfg: cfg,
		out: out,
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins a session and broadcasts session_started.
func (e *Engine) Start() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return "", ErrAlreadyActive
	}
	if e.cfg.CameraFails {
		return "", ErrCamera
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.active = true
	e.sessionID = uuid.New().String()
	e.cancel = cancel
	e.lastActivity = e.now()
	e.alertsPaused = false
	e.gate = newAlertGate()

	slog.Info("session started", "session_id", e.sessionID)
	e.out.Broadcast(ws.MsgSessionStarted, ws.SessionStartedPayload{SessionID: e.sessionID})
	go e.run(ctx, e.sessionID)
	return e.sessionID, nil
}

// Stop ends the running session and broadcasts session_stopped.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNoSession
	}
	slog.Info("session stopped", "session_id", e.sessionID)
	e.endLocked()
	e.out.Broadcast(ws.MsgSessionStopped, nil)
	return nil
}

// Shutdown ends any running session without broadcasting.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		e.endLocked()
	}
}

func (e *Engine) endLocked() {
	e.active = false
	e.sessionID = ""
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Active reports whether a session is running and its ID.
func (e *Engine) Active() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.sessionID
}

// VoiceCommand answers a typed or spoken command.
func (e *Engine) VoiceCommand(command string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return "", ErrNoSession
	}
	resp := e.respondLocked(strings.ToLower(command))
	slog.Info("voice command", "command", command, "response", resp)
	return resp, nil
}

func (e *Engine) respondLocked(command string) string {
	switch {
	case strings.Contains(command, "what's in front"), strings.Contains(command, "describe"),
		strings.Contains(command, "what do you see"):
		return scenes[e.rng.Intn(len(scenes))]
	case strings.Contains(command, "traffic light"), strings.Contains(command, "red light"):
		if e.rng.Intn(2) == 0 {
			return "The traffic light is red"
		}
		return "The traffic light is green"
	case strings.Contains(command, "read"):
		return "I read: EXIT"
	case strings.Contains(command, "who is here"), strings.Contains(command, "who's here"):
		return "I see: " + knownFaces[e.rng.Intn(len(knownFaces))]
	case strings.Contains(command, "pause"):
		e.alertsPaused = true
		return "Alerts paused"
	case strings.Contains(command, "resume"):
		e.alertsPaused = false
		return "Alerts resumed"
	}
	return "I didn't understand that command"
}

// Frame renders the current camera frame while a session runs.
func (e *Engine) Frame() (string, bool) {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return "", false
	}
	e.frameSeq++
	seq := e.frameSeq
	e.mu.Unlock()

	data, err := encodeFrame(renderFrame(seq))
	if err != nil {
		slog.Error("frame encode failed", "err", err)
		return "", false
	}
	return data, true
}

func (e *Engine) run(ctx context.Context, id string) {
	alertC, stopAlert := ticker(e.cfg.AlertInterval)
	defer stopAlert()
	frameC, stopFrame := ticker(e.cfg.FrameInterval)
	defer stopFrame()
	wakeC, stopWake := ticker(e.cfg.WakeWordInterval)
	defer stopWake()
	idleC, stopIdle := ticker(idleCheckInterval(e.cfg.InactivityTimeout))
	defer stopIdle()

	var listenC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-alertC:
			e.emitAlert(id)
		case <-frameC:
			if data, ok := e.Frame(); ok {
				e.out.Broadcast(ws.MsgFrame, ws.FramePayload{Data: data})
			}
		case <-wakeC:
			if listenC == nil && e.current(id) {
				e.out.Broadcast(ws.MsgWakeWordDetected, nil)
				listenC = time.After(e.cfg.ListenDuration)
			}
		case <-listenC:
			listenC = nil
			e.emitVoiceCommand(id)
		case <-idleC:
			if e.pauseIfIdle(id) {
				return
			}
		}
	}
}

// current reports whether session id is still the running one.
func (e *Engine) current(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active && e.sessionID == id
}

func (e *Engine) emitAlert(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.sessionID != id || e.alertsPaused {
		return
	}

	// Quiet spells let the inactivity timeout trigger.
	if e.rng.Intn(10) < 3 {
		return
	}

	now := e.now()
	priority, message, key := nextAlert(e.rng)
	if !e.gate.allow(priority, key, now) {
		return
	}
	e.lastActivity = now
	slog.Debug("alert", "spoken", spokenForm(priority, message))
	e.out.Broadcast(ws.MsgAlert, ws.AlertPayload{
		Priority:  priority,
		Message:   message,
		Timestamp: timestamp(now),
	})
}

func (e *Engine) emitVoiceCommand(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.sessionID != id {
		return
	}
	cmd := spokenCommands[e.rng.Intn(len(spokenCommands))]
	e.out.Broadcast(ws.MsgVoiceCommand, ws.VoiceCommandPayload{Command: cmd})
	slog.Info("voice command", "command", cmd, "response", e.respondLocked(cmd))
}

// pauseIfIdle ends session id with session_paused once no alert has been
// raised for the inactivity timeout.
func (e *Engine) pauseIfIdle(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.sessionID != id {
		return true
	}
	if e.now().Sub(e.lastActivity) <= e.cfg.InactivityTimeout {
		return false
	}
	slog.Info("session paused", "session_id", id, "reason", "inactivity")
	e.endLocked()
	e.out.Broadcast(ws.MsgSessionPaused, ws.SessionPausedPayload{Reason: "inactivity"})
	return true
}

func idleCheckInterval(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	return min(max(timeout/4, 10*time.Millisecond), time.Second)
}

// ticker returns a ticking channel, or nil when d disables it.
func ticker(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}
