package store

import (
	"context"
	"database/sql"
	"time"
)

func (s *monitoringStore) AddPingRecord(ctx context.Context, rec *PingRecord) (int64, error) {
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ping_records(endpoint_id, status, status_code, latency_ms, error, response_body, response_headers_json, checked_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		rec.EndpointID, rec.Status, nullableInt(rec.StatusCode), rec.LatencyMs,
		nullableString(rec.Error), nullableString(rec.ResponseBody), nullableString(headersToJSON(rec.ResponseHeaders)), rec.CheckedAt.UTC())
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	rec.ID = id
	return id, nil
}

func (s *monitoringStore) ListPingRecords(ctx context.Context, endpointID int64, since time.Time) ([]PingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, endpoint_id, status, status_code, latency_ms, error, response_body, response_headers_json, checked_at
		FROM ping_records WHERE endpoint_id=? AND checked_at>=? ORDER BY checked_at ASC`, endpointID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []PingRecord
	for rows.Next() {
		var rec PingRecord
		var statusCode sql.NullInt64
		var errText, body, headers sql.NullString
		if err := rows.Scan(&rec.ID, &rec.EndpointID, &rec.Status, &statusCode, &rec.LatencyMs, &errText, &body, &headers, &rec.CheckedAt); err != nil {
			return nil, err
		}
		if statusCode.Valid {
			val := int(statusCode.Int64)
			rec.StatusCode = &val
		}
		if errText.Valid {
			val := errText.String
			rec.Error = &val
		}
		if body.Valid {
			val := body.String
			rec.ResponseBody = &val
		}
		rec.ResponseHeaders = headersFromJSON(headers)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// PingSummary returns successful count, total count and the average latency
// over successful pings within the window.
func (s *monitoringStore) PingSummary(ctx context.Context, endpointID int64, since time.Time) (int, int, float64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN status='success' THEN 1 ELSE 0 END), AVG(CASE WHEN status='success' THEN latency_ms END)
		FROM ping_records WHERE endpoint_id=? AND checked_at>=?`, endpointID, since.UTC())
	var total, okCount sql.NullInt64
	var avg sql.NullFloat64
	if err := row.Scan(&total, &okCount, &avg); err != nil {
		return 0, 0, 0, err
	}
	if !total.Valid {
		return 0, 0, 0, nil
	}
	okVal := 0
	if okCount.Valid {
		okVal = int(okCount.Int64)
	}
	avgVal := 0.0
	if avg.Valid {
		avgVal = avg.Float64
	}
	return okVal, int(total.Int64), avgVal, nil
}

func (s *monitoringStore) DeletePingRecordsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ping_records WHERE checked_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
