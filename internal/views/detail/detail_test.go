package detail

import (
	"strings"
	"testing"
	"time"

	"github.com/sightline/console/internal/reconcile"
)

func TestViewEmpty(t *testing.T) {
	if got := New(reconcile.NewAlertLog(5), 0).View(); got != "" {
		t.Errorf("View() on an empty log = %q", got)
	}
}

func TestViewEntry(t *testing.T) {
	log := reconcile.NewAlertLog(5)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	log.Push(reconcile.AlertEntry{Priority: reconcile.PriorityInformational, Raw: "informational", Message: "bench in view", Timestamp: ts})
	log.Push(reconcile.AlertEntry{Priority: reconcile.PriorityCritical, Raw: "critical", Message: "CAR detected close distance from your left!", Timestamp: ts.Add(time.Minute)})

	m := New(log, 0)
	m.now = func() time.Time { return ts.Add(3 * time.Minute) }
	v := m.View()
	for _, want := range []string{"Alert 1 of 2", "CRITICAL", "CAR detected", "2026-03-01 10:01:00", "2m 0s ago"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestViewUnknownTime(t *testing.T) {
	log := reconcile.NewAlertLog(5)
	log.Push(reconcile.AlertEntry{Priority: reconcile.PriorityOther, Raw: "weird", Message: "?"})
	v := New(log, 0).View()
	if !strings.Contains(v, "unknown") || !strings.Contains(v, "WEIRD") {
		t.Errorf("view:\n%s", v)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "just now"},
		{42 * time.Second, "42s ago"},
		{90 * time.Second, "1m 30s ago"},
		{2*time.Hour + 5*time.Minute, "2h 5m ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
