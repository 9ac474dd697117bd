package store

import (
	"context"
	"time"
)

func (s *monitoringStore) AddEvent(ctx context.Context, ev *EndpointEvent) (int64, error) {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO endpoint_events(endpoint_id, ts, event_type, message)
		VALUES(?,?,?,?)`, ev.EndpointID, ev.TS.UTC(), ev.EventType, ev.Message)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	ev.ID = id
	return id, nil
}

func (s *monitoringStore) ListEvents(ctx context.Context, endpointID int64, since time.Time) ([]EndpointEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint_id, ts, event_type, message
		FROM endpoint_events WHERE endpoint_id=? AND ts>=? ORDER BY ts DESC`, endpointID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []EndpointEvent
	for rows.Next() {
		var ev EndpointEvent
		if err := rows.Scan(&ev.ID, &ev.EndpointID, &ev.TS, &ev.EventType, &ev.Message); err != nil {
			return nil, err
		}
		res = append(res, ev)
	}
	return res, rows.Err()
}
