package store

import (
	"context"
	"time"
)

func (s *monitoringStore) UpsertUptimeSummary(ctx context.Context, summary *UptimeSummary) error {
	if summary.CalculatedAt.IsZero() {
		summary.CalculatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uptime_summaries(endpoint_id, period, uptime_pct, total_pings, successful_pings, failed_pings, avg_response_ms, calculated_at)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT (endpoint_id, period)
		DO UPDATE SET
			uptime_pct=excluded.uptime_pct,
			total_pings=excluded.total_pings,
			successful_pings=excluded.successful_pings,
			failed_pings=excluded.failed_pings,
			avg_response_ms=excluded.avg_response_ms,
			calculated_at=excluded.calculated_at`,
		summary.EndpointID, summary.Period, summary.UptimePct, summary.TotalPings,
		summary.SuccessfulPings, summary.FailedPings, summary.AvgResponseMs, summary.CalculatedAt.UTC())
	return err
}

func (s *monitoringStore) ListUptimeSummaries(ctx context.Context, endpointID int64) ([]UptimeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT endpoint_id, period, uptime_pct, total_pings, successful_pings, failed_pings, avg_response_ms, calculated_at
		FROM uptime_summaries WHERE endpoint_id=?
		ORDER BY CASE period WHEN '24h' THEN 1 WHEN '7d' THEN 2 WHEN '30d' THEN 3 ELSE 4 END`, endpointID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []UptimeSummary
	for rows.Next() {
		var summary UptimeSummary
		if err := rows.Scan(&summary.EndpointID, &summary.Period, &summary.UptimePct, &summary.TotalPings,
			&summary.SuccessfulPings, &summary.FailedPings, &summary.AvgResponseMs, &summary.CalculatedAt); err != nil {
			return nil, err
		}
		res = append(res, summary)
	}
	return res, rows.Err()
}
