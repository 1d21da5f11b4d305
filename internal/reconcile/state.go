// Package reconcile holds the dashboard's UI state and the transitions
// that keep it consistent with pushed events and local session actions.
//
// All mutation goes through named transitions on UiState. Transitions are
// "set to X" operations so that replaying an event, or interleaving it
// with an optimistic controller update, converges on the same state.
// Transitions never block and never schedule work themselves; anything
// deferred (a notice, a timer) is returned as an Effect for the caller's
// event loop to carry out.
package reconcile

import "time"

// PausedNotice is shown when the server pauses a session on its own.
const PausedNotice = "Session paused due to inactivity"

// SessionState is the single source of truth for "is monitoring on".
type SessionState struct {
	Active bool
	ID     string
}

// Indicators is everything the status region shows. It is derived from
// SessionState.Active and nothing else.
type Indicators struct {
	Active       bool
	Text         string
	StartVisible bool
	StopVisible  bool
}

// IndicatorsFor derives the indicator set for a session state.
func IndicatorsFor(active bool) Indicators {
	if active {
		return Indicators{Active: true, Text: "Active", StopVisible: true}
	}
	return Indicators{Active: false, Text: "Stopped", StartVisible: true}
}

// Effect is deferred work requested by a transition.
type Effect struct {
	// Notice, when set, must be surfaced to the user as a blocking notice.
	Notice string
	// Hide, when set, must be delivered back via ExpireWakeWord.
	Hide *HideTimer
}

// UiState is the whole reconciled dashboard state.
type UiState struct {
	Session  SessionState
	Alerts   *AlertLog
	WakeWord WakeWord
	Camera   CameraFrame

	binding ViewBinding
	now     func() time.Time
}

// New creates the initial state for the given view binding.
func New(binding ViewBinding) *UiState {
	return &UiState{
		Alerts:  NewAlertLog(AlertLogCapacity),
		binding: binding,
		now:     time.Now,
	}
}

// Binding returns the view binding captured at construction.
func (s *UiState) Binding() ViewBinding { return s.binding }

// Indicators derives the status indicators from the session state.
func (s *UiState) Indicators() Indicators { return IndicatorsFor(s.Session.Active) }

// SetSessionActive is the one write path for the session flag. Both the
// optimistic controller path and the pushed events go through it.
func (s *UiState) SetSessionActive(active bool) {
	s.Session.Active = active
	if !active {
		s.Session.ID = ""
	}
}

// SessionStarted applies a session_started event.
func (s *UiState) SessionStarted(id string) Effect {
	s.SetSessionActive(true)
	if id != "" {
		s.Session.ID = id
	}
	return Effect{}
}

// SessionStopped applies a session_stopped event.
func (s *UiState) SessionStopped() Effect {
	s.SetSessionActive(false)
	return Effect{}
}

// SessionPaused applies a session_paused event. Unlike an explicit stop it
// asks for a notice so the user can tell the two apart.
func (s *UiState) SessionPaused() Effect {
	s.SetSessionActive(false)
	return Effect{Notice: PausedNotice}
}

// Alert applies an alert event.
func (s *UiState) Alert(priority, message, timestamp string) Effect {
	if !s.binding.Alerts {
		return Effect{}
	}
	s.Alerts.Push(AlertEntry{
		Priority:  ParsePriority(priority),
		Raw:       priority,
		Message:   message,
		Timestamp: ParseTimestamp(timestamp),
	})
	return Effect{}
}

// WakeWordDetected applies a wake_word_detected event.
func (s *UiState) WakeWordDetected() Effect {
	if !s.binding.WakeWord {
		return Effect{}
	}
	s.WakeWord.Detect()
	return Effect{}
}

// VoiceCommand applies a voice_command event: the status goes idle now and
// the banner hides after the grace window.
func (s *UiState) VoiceCommand() Effect {
	if !s.binding.WakeWord {
		return Effect{}
	}
	if t, ok := s.WakeWord.Release(s.now()); ok {
		return Effect{Hide: &t}
	}
	return Effect{}
}

// ExpireWakeWord delivers a hide timer armed by VoiceCommand. Stale
// generations are ignored. It reports whether the banner was hidden.
func (s *UiState) ExpireWakeWord(gen uint64) bool {
	return s.WakeWord.Expire(gen)
}

// Frame applies a frame event. Undecodable frames still replace the
// previous one; the view falls back to a textual summary.
func (s *UiState) Frame(data string) Effect {
	if !s.binding.Camera {
		return Effect{}
	}
	mime, img, err := decodeFrame(data)
	s.Camera = CameraFrame{
		Visible:    true,
		Seq:        s.Camera.Seq + 1,
		ReceivedAt: s.now(),
		Size:       len(data),
		MIME:       mime,
		Image:      img,
		DecodeErr:  err,
	}
	return Effect{}
}

// WantsFramePull reports whether a camera region is bound and the stream
// should be primed with a get_frame request.
func (s *UiState) WantsFramePull() bool { return s.binding.Camera }
