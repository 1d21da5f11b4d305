package reconcile

// AlertLogCapacity is the number of alerts kept on screen.
const AlertLogCapacity = 50

// AlertLog is a fixed-capacity ring of alerts. Inserting into a full log
// overwrites the oldest entry. Reads are newest first.
type AlertLog struct {
	buf  []AlertEntry
	next int // slot the next Push writes
	n    int
}

// NewAlertLog returns an empty log holding at most capacity entries.
func NewAlertLog(capacity int) *AlertLog {
	if capacity < 1 {
		capacity = 1
	}
	return &AlertLog{buf: make([]AlertEntry, capacity)}
}

// Push inserts e as the newest entry and reports whether the oldest entry
// was evicted to make room.
func (l *AlertLog) Push(e AlertEntry) (evicted bool) {
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.n == len(l.buf) {
		return true
	}
	l.n++
	return false
}

// Len returns the number of entries held.
func (l *AlertLog) Len() int { return l.n }

// Cap returns the capacity.
func (l *AlertLog) Cap() int { return len(l.buf) }

// At returns the i-th newest entry; At(0) is the most recent.
func (l *AlertLog) At(i int) AlertEntry {
	if i < 0 || i >= l.n {
		panic("reconcile: alert log index out of range")
	}
	idx := (l.next - 1 - i) % len(l.buf)
	if idx < 0 {
		idx += len(l.buf)
	}
	return l.buf[idx]
}

// Entries copies the log out, newest first.
func (l *AlertLog) Entries() []AlertEntry {
	out := make([]AlertEntry, l.n)
	for i := range out {
		out[i] = l.At(i)
	}
	return out
}
