package notify

import (
	"time"

	"statuspulse/core/store"
)

type EventKind string

const (
	EventDown EventKind = "api_down"
	EventUp   EventKind = "api_up"
)

// Event is one state change handed to the dispatcher. The incident lifecycle
// publishes it and returns immediately; delivery happens on the dispatcher's
// own goroutine.
type Event struct {
	Kind     EventKind
	Endpoint store.Endpoint
	Incident store.Incident
	// Reason is the probe-level context: error text or "status 503".
	Reason string
	At     time.Time
}

func (e Event) StatusWord() string {
	if e.Kind == EventUp {
		return "up"
	}
	return "down"
}
