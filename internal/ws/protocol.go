package ws

import "encoding/json"

type MessageType string

// Server to client events.
const (
	MsgConnected        MessageType = "connected"
	MsgSessionStarted   MessageType = "session_started"
	MsgSessionStopped   MessageType = "session_stopped"
	MsgSessionPaused    MessageType = "session_paused"
	MsgAlert            MessageType = "alert"
	MsgWakeWordDetected MessageType = "wake_word_detected"
	MsgVoiceCommand     MessageType = "voice_command"
	MsgFrame            MessageType = "frame"
)

// Client to server requests.
const (
	MsgGetFrame MessageType = "get_frame"
	MsgAuth     MessageType = "auth"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// inboundMessage is a client request. Auth messages carry the token at the
// top level.
type inboundMessage struct {
	Type    MessageType     `json:"type"`
	Token   string          `json:"token,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConnectedPayload struct {
	Status string `json:"status"`
}

type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
}

type SessionPausedPayload struct {
	Reason string `json:"reason"`
}

type AlertPayload struct {
	Priority  string `json:"priority"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type VoiceCommandPayload struct {
	Command string `json:"command"`
}

type FramePayload struct {
	Data string `json:"data"`
}

// HTTP bodies.

type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
}

type VoiceCommandRequest struct {
	Command string `json:"command"`
}

type VoiceCommandResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
