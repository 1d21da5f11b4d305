// Package client provides WebSocket and HTTP clients for the Sightline
// monitoring server. Types mirror the server wire protocol without
// importing server packages.
package client

import "encoding/json"

// EventType names a pushed event on the realtime channel.
type EventType string

const (
	EventConnected        EventType = "connected"
	EventSessionStarted   EventType = "session_started"
	EventSessionStopped   EventType = "session_stopped"
	EventSessionPaused    EventType = "session_paused"
	EventAlert            EventType = "alert"
	EventWakeWordDetected EventType = "wake_word_detected"
	EventVoiceCommand     EventType = "voice_command"
	EventFrame            EventType = "frame"

	// Outbound requests.
	RequestGetFrame EventType = "get_frame"
	RequestAuth     EventType = "auth"
)

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- WebSocket payload types ---

// ConnectedPayload is the server's acknowledgement of a new connection.
type ConnectedPayload struct {
	Status string `json:"status"`
}

// SessionStartedPayload is broadcast when a session starts.
type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
}

// SessionPausedPayload is broadcast when the server pauses a session on its own.
type SessionPausedPayload struct {
	Reason string `json:"reason"`
}

// AlertPayload is a prioritized notification from the monitoring engine.
// Timestamp is the raw ISO-8601 string as sent by the server.
type AlertPayload struct {
	Priority  string `json:"priority"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// VoiceCommandPayload carries a recognized voice command.
type VoiceCommandPayload struct {
	Command string `json:"command"`
}

// FramePayload carries one encoded camera frame, usually a data URL.
type FramePayload struct {
	Data string `json:"data"`
}

// --- HTTP response types ---

// SessionResponse is returned by the session start and stop endpoints.
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
}

// VoiceCommandRequest is the body of POST /api/voice/command.
type VoiceCommandRequest struct {
	Command string `json:"command"`
}

// VoiceCommandResponse is diagnostic only.
type VoiceCommandResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
}

// ErrorResponse is the body of any non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
