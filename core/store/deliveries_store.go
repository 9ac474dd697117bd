package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (s *monitoringStore) AddWebhookDelivery(ctx context.Context, d *WebhookDelivery) error {
	if d == nil {
		return errors.New("nil delivery")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO webhook_deliveries(id, webhook_url, event_type, endpoint_id, incident_id, payload, success, status_code, error, latency_ms, created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.WebhookURL, d.EventType, d.EndpointID, d.IncidentID, d.Payload,
		boolToInt(d.Success), nullableInt(d.StatusCode), nullableString(d.Error), d.LatencyMs, d.CreatedAt.UTC())
	return err
}

func (s *monitoringStore) ListWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, webhook_url, event_type, endpoint_id, incident_id, payload, success, status_code, error, latency_ms, created_at
		FROM webhook_deliveries ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]WebhookDelivery, 0, limit)
	for rows.Next() {
		var d WebhookDelivery
		var success int
		var statusCode sql.NullInt64
		var errText sql.NullString
		if err := rows.Scan(&d.ID, &d.WebhookURL, &d.EventType, &d.EndpointID, &d.IncidentID, &d.Payload,
			&success, &statusCode, &errText, &d.LatencyMs, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Success = success == 1
		if statusCode.Valid {
			val := int(statusCode.Int64)
			d.StatusCode = &val
		}
		if errText.Valid {
			val := errText.String
			d.Error = &val
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
