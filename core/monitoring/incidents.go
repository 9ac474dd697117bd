package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statuspulse/core/notify"
	"statuspulse/core/store"
)

// openIncident creates an incident for a DOWN edge unless one is already
// open. The existence check makes the operation idempotent against
// overlapping ticks and repeated failures.
func (e *Engine) openIncident(ctx context.Context, ep store.Endpoint, res ProbeResult) {
	existing, err := e.incidents.FindOpenIncident(ctx, ep.ID)
	if err != nil {
		e.logger.Errorf("find open incident for endpoint %d: %v", ep.ID, err)
		return
	}
	if existing != nil {
		return
	}
	reason := probeReason(res)
	startedAt := res.CheckedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	incident := &store.Incident{
		EndpointID: ep.ID,
		Title:      fmt.Sprintf("%s is down", ep.Name),
		Description: fmt.Sprintf("Automatic incident: health check for %s (%s) failed.\nReason: %s",
			ep.Name, ep.URL, reason),
		Status:    store.IncidentOngoing,
		StartedAt: startedAt,
	}
	if _, err := e.incidents.CreateIncident(ctx, incident); err != nil {
		e.logger.Errorf("create incident for endpoint %d: %v", ep.ID, err)
		return
	}
	e.logger.Infof("opened incident %d: endpoint %d down (%s)", incident.ID, ep.ID, reason)
	e.publish(notify.EventDown, ep, *incident, reason)
}

// resolveIncident closes the most recent open incident for an UP edge. No
// open incident is a no-op; losing the resolve race to another writer is
// also a no-op.
func (e *Engine) resolveIncident(ctx context.Context, ep store.Endpoint, res ProbeResult) {
	open, err := e.incidents.FindOpenIncident(ctx, ep.ID)
	if err != nil {
		e.logger.Errorf("find open incident for endpoint %d: %v", ep.ID, err)
		return
	}
	if open == nil {
		return
	}
	resolvedAt := res.CheckedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}
	if resolvedAt.Before(open.StartedAt) {
		resolvedAt = open.StartedAt
	}
	downtime, _ := store.Incident{StartedAt: open.StartedAt, ResolvedAt: &resolvedAt}.DowntimeMinutes()
	note := fmt.Sprintf("\n\nResolved automatically at %s after %d minutes of downtime.",
		resolvedAt.UTC().Format(time.RFC3339), downtime)
	resolved, err := e.incidents.ResolveIncident(ctx, open.ID, resolvedAt, note)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return
		}
		e.logger.Errorf("resolve incident %d: %v", open.ID, err)
		return
	}
	e.logger.Infof("resolved incident %d: endpoint %d recovered after %d minutes", resolved.ID, ep.ID, downtime)
	e.publish(notify.EventUp, ep, *resolved, "")
}

func (e *Engine) publish(kind notify.EventKind, ep store.Endpoint, incident store.Incident, reason string) {
	if e.events == nil {
		return
	}
	e.events.Publish(notify.Event{
		Kind:     kind,
		Endpoint: ep,
		Incident: incident,
		Reason:   reason,
		At:       time.Now().UTC(),
	})
}
