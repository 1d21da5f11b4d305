package reconcile

import "time"

// WakeWordGrace is how long the banner lingers after the wake word is
// released before it is hidden.
const WakeWordGrace = 2000 * time.Millisecond

// HideTimer is a request to call UiState.ExpireWakeWord(Gen) after After.
type HideTimer struct {
	Gen   uint64
	After time.Duration
}

// WakeWord tracks the wake-word banner.
//
// Active is the logical status. Visible is what the banner shows; it lags
// Active by the grace window on the way down. At most one hide is pending:
// every transition bumps gen, so a timer armed for an older generation is
// ignored when it fires.
type WakeWord struct {
	Active     bool
	Visible    bool
	ReleasedAt time.Time

	gen     uint64
	pending bool
}

// Detect shows the banner and cancels any pending hide.
func (w *WakeWord) Detect() {
	w.gen++
	w.pending = false
	w.Active = true
	w.Visible = true
	w.ReleasedAt = time.Time{}
}

// Release marks the status idle and arms a hide for the current banner,
// replacing any hide already pending. It returns false when the banner is
// not showing, in which case nothing is armed.
func (w *WakeWord) Release(now time.Time) (HideTimer, bool) {
	w.gen++
	w.Active = false
	if !w.Visible {
		w.pending = false
		return HideTimer{}, false
	}
	w.pending = true
	w.ReleasedAt = now
	return HideTimer{Gen: w.gen, After: WakeWordGrace}, true
}

// Expire hides the banner if gen is the pending hide. It reports whether
// anything changed.
func (w *WakeWord) Expire(gen uint64) bool {
	if !w.pending || gen != w.gen {
		return false
	}
	w.pending = false
	w.Visible = false
	w.ReleasedAt = time.Time{}
	return true
}

// Pending reports whether a hide is armed.
func (w WakeWord) Pending() bool { return w.pending }

// Generation identifies the current transition; fade animations key off it.
func (w WakeWord) Generation() uint64 { return w.gen }
