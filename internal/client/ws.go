package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// ErrNotConnected is returned by Emit while no connection is up.
var ErrNotConnected = errors.New("not connected")

// WSClient manages the WebSocket connection to the Sightline server.
type WSClient struct {
	url   string
	token string

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes (ping, requests, auth)
	conn    *websocket.Conn
	pingCtx context.CancelFunc // cancels the active ping goroutine
}

// NewWSClient creates a client that connects to the given WebSocket URL.
func NewWSClient(url, token string) *WSClient {
	return &WSClient{url: url, token: token}
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the transport connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// ConnectedMsg is the server's connection acknowledgement.
type ConnectedMsg struct{ Payload ConnectedPayload }

// SessionStartedMsg reports that a session became active.
type SessionStartedMsg struct{ Payload SessionStartedPayload }

// SessionStoppedMsg reports an explicit stop.
type SessionStoppedMsg struct{}

// SessionPausedMsg reports an automatic pause.
type SessionPausedMsg struct{ Payload SessionPausedPayload }

// AlertMsg delivers one alert.
type AlertMsg struct{ Payload AlertPayload }

// WakeWordDetectedMsg is sent when the wake word is heard.
type WakeWordDetectedMsg struct{}

// VoiceCommandMsg delivers the command recognized after a wake word.
type VoiceCommandMsg struct{ Payload VoiceCommandPayload }

// FrameMsg delivers the latest camera frame.
type FrameMsg struct{ Payload FramePayload }

// Listen returns a Bubble Tea command that connects and reports
// WSConnectedMsg. It retries with exponential backoff until it connects or
// ctx is cancelled.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Debug("ws dial failed", "url", c.url, "err", err, "retry", delay)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			// No write mutex needed here because the connection isn't
			// shared yet (not stored in c.conn).
			if c.token != "" {
				auth := map[string]string{"type": string(RequestAuth), "token": c.token}
				if err := conn.WriteJSON(auth); err != nil {
					conn.Close()
					continue
				}
			}

			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			return WSConnectedMsg{}
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads until the next known
// event and returns it as a message. Re-issue it after every event.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return WSDisconnectedMsg{Err: ErrNotConnected}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.drop(conn)
				if ctx.Err() != nil {
					return nil
				}
				return WSDisconnectedMsg{Err: err}
			}

			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.Debug("ws frame skipped", "err", err)
				continue
			}

			if teaMsg := Dispatch(msg); teaMsg != nil {
				return teaMsg
			}
			slog.Debug("ws event ignored", "type", msg.Type)
		}
	}
}

// Emit sends a payload-less request such as get_frame.
func (c *WSClient) Emit(event EventType) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(WSMessage{Type: event})
}

// Close tears down the current connection, if any.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	if c.pingCtx != nil {
		c.pingCtx()
		c.pingCtx = nil
	}
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *WSClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// pingLoop sends periodic pings on the given connection. It exits when the
// context is cancelled or the connection changes.
func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Dispatch converts an envelope into its Bubble Tea message. Payloads are
// decoded best-effort: missing or mistyped fields stay zero and the event
// is still delivered. Unknown event types return nil.
func Dispatch(msg WSMessage) tea.Msg {
	switch msg.Type {
	case EventConnected:
		var p ConnectedPayload
		decodeLoose(msg, &p)
		return ConnectedMsg{Payload: p}
	case EventSessionStarted:
		var p SessionStartedPayload
		decodeLoose(msg, &p)
		return SessionStartedMsg{Payload: p}
	case EventSessionStopped:
		return SessionStoppedMsg{}
	case EventSessionPaused:
		var p SessionPausedPayload
		decodeLoose(msg, &p)
		return SessionPausedMsg{Payload: p}
	case EventAlert:
		var p AlertPayload
		decodeLoose(msg, &p)
		return AlertMsg{Payload: p}
	case EventWakeWordDetected:
		return WakeWordDetectedMsg{}
	case EventVoiceCommand:
		var p VoiceCommandPayload
		decodeLoose(msg, &p)
		return VoiceCommandMsg{Payload: p}
	case EventFrame:
		var p FramePayload
		decodeLoose(msg, &p)
		return FrameMsg{Payload: p}
	}
	return nil
}

// decodeLoose fills out from the payload, tolerating mismatched fields.
// encoding/json keeps decoding past type mismatches, so well-formed fields
// still land in out.
func decodeLoose(msg WSMessage, out interface{}) {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		slog.Debug("malformed event payload", "type", msg.Type, "err", err)
	}
}
