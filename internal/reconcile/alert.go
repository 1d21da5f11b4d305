package reconcile

import (
	"strings"
	"time"
)

// Priority classifies an alert.
type Priority string

const (
	PriorityCritical      Priority = "critical"
	PriorityImportant     Priority = "important"
	PriorityInformational Priority = "informational"
	PriorityOther         Priority = "other"
)

// ParsePriority maps a wire priority to a known value. Anything
// unrecognised, including the empty string, is PriorityOther.
func ParsePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityCritical, PriorityImportant, PriorityInformational:
		return p
	default:
		return PriorityOther
	}
}

// AlertEntry is one received alert. Raw keeps the priority string as sent
// so unknown priorities can still be labelled.
type AlertEntry struct {
	Priority  Priority
	Raw       string
	Message   string
	Timestamp time.Time
}

// Label is the upper-cased priority as it should be displayed.
func (e AlertEntry) Label() string {
	if e.Raw != "" {
		return strings.ToUpper(e.Raw)
	}
	return strings.ToUpper(string(e.Priority))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses ISO-8601 timestamps with or without a zone.
// Zone-less values are taken as local time. An unparseable value yields
// the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
