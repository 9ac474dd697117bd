package monitoring

import (
	"sync"

	"statuspulse/core/store"
)

type Transition int

const (
	TransitionNone Transition = iota
	TransitionFirstUp
	TransitionFirstDown
	TransitionUpToDown
	TransitionDownToUp
)

func (t Transition) String() string {
	switch t {
	case TransitionFirstUp:
		return "first_up"
	case TransitionFirstDown:
		return "first_down"
	case TransitionUpToDown:
		return "up_to_down"
	case TransitionDownToUp:
		return "down_to_up"
	default:
		return "none"
	}
}

// statusIsDown treats failure and timeout alike: anything but success counts
// as down.
func statusIsDown(status string) bool {
	return status != store.PingSuccess
}

// Classify compares a new outcome against the prior one. prevKnown is false
// when the endpoint has never been observed by this process.
func Classify(prevStatus string, prevKnown bool, nextStatus string) Transition {
	nextDown := statusIsDown(nextStatus)
	if !prevKnown {
		if nextDown {
			return TransitionFirstDown
		}
		return TransitionFirstUp
	}
	prevDown := statusIsDown(prevStatus)
	switch {
	case prevDown == nextDown:
		return TransitionNone
	case nextDown:
		return TransitionUpToDown
	default:
		return TransitionDownToUp
	}
}

// StateTracker holds the last observed outcome per endpoint for the lifetime
// of the process. It is owned by the engine and injected where needed, never
// a package-level singleton.
type StateTracker struct {
	mu   sync.Mutex
	last map[int64]string
}

func NewStateTracker() *StateTracker {
	return &StateTracker{last: map[int64]string{}}
}

// Observe classifies the new outcome and then records it. The record step is
// unconditional: the table always ends up holding the latest status.
func (t *StateTracker) Observe(endpointID int64, status string) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, known := t.last[endpointID]
	tr := Classify(prev, known, status)
	t.last[endpointID] = status
	return tr
}

// Seed plants a prior status without classifying, used for startup
// reconciliation against open incidents.
func (t *StateTracker) Seed(endpointID int64, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[endpointID] = status
}

func (t *StateTracker) Last(endpointID int64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.last[endpointID]
	return status, ok
}

func (t *StateTracker) Forget(endpointID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, endpointID)
}
