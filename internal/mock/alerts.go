package mock

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	criticalRepeat    = 3 * time.Second
	importantCooldown = 30 * time.Second
	infoCooldown      = 10 * time.Second
)

type detection struct {
	class    string
	priority string
}

var detections = []detection{
	{"car", "critical"},
	{"bicycle", "critical"},
	{"stairs", "critical"},
	{"person", "important"},
	{"dog", "important"},
	{"door", "important"},
	{"chair", "informational"},
	{"bench", "informational"},
	{"traffic light", "informational"},
	{"bottle", "informational"},
}

var (
	directions = []string{"left", "right", "front"}
	distances  = []string{"close", "medium", "far"}
	knownFaces = []string{"Alex", "Sam", "Priya"}
)

// alertGate rate-limits alerts. Critical alerts share one repeat
// interval; the others cool down per key.
type alertGate struct {
	lastCritical time.Time
	seen         map[string]time.Time
}

func newAlertGate() *alertGate {
	return &alertGate{seen: make(map[string]time.Time)}
}

func (g *alertGate) allow(priority, key string, now time.Time) bool {
	switch priority {
	case "critical":
		if !g.lastCritical.IsZero() && now.Sub(g.lastCritical) < criticalRepeat {
			return false
		}
		g.lastCritical = now
		return true
	case "important", "informational":
		cooldown := infoCooldown
		if priority == "important" {
			cooldown = importantCooldown
		}
		if last, ok := g.seen[key]; ok && now.Sub(last) < cooldown {
			return false
		}
		g.seen[key] = now
		return true
	}
	return false
}

// nextAlert invents a detection or face sighting. key identifies it for the
// cooldown gate.
func nextAlert(rng *rand.Rand) (priority, message, key string) {
	if rng.Intn(5) == 0 {
		name := knownFaces[rng.Intn(len(knownFaces))]
		feet := 2 + rng.Intn(12)
		return "important", fmt.Sprintf("%s is %d feet in front of you", name, feet), "face_" + name
	}

	d := detections[rng.Intn(len(detections))]
	dir := directions[rng.Intn(len(directions))]
	dist := distances[rng.Intn(len(distances))]
	key = "object_" + d.class + "_" + dir

	switch d.priority {
	case "critical":
		message = fmt.Sprintf("%s detected %s distance from your %s!", strings.ToUpper(d.class), dist, dir)
	case "important":
		message = fmt.Sprintf("%s detected %s distance from your %s", d.class, dist, dir)
	default:
		message = d.class + " in view"
	}
	return d.priority, message, key
}

// spokenForm is how an alert would be read aloud.
func spokenForm(priority, message string) string {
	switch priority {
	case "critical":
		return "WARNING: " + message
	case "important":
		return "Alert: " + message
	}
	return message
}

// timestamp formats t the way the monitoring engine does: local time
// without a zone.
func timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}
