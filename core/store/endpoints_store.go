package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

func (s *monitoringStore) CreateEndpoint(ctx context.Context, e *Endpoint) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO endpoints(name, url, expected_status, timeout_sec, interval_sec, is_active, is_public, position, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(e.Name), strings.TrimSpace(e.URL), e.ExpectedStatus, e.TimeoutSec, e.IntervalSec,
		boolToInt(e.IsActive), boolToInt(e.IsPublic), e.Position, now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return id, nil
}

func (s *monitoringStore) UpdateEndpoint(ctx context.Context, e *Endpoint) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE endpoints
		SET name=?, url=?, expected_status=?, timeout_sec=?, interval_sec=?, is_active=?, is_public=?, position=?, updated_at=?
		WHERE id=?`,
		strings.TrimSpace(e.Name), strings.TrimSpace(e.URL), e.ExpectedStatus, e.TimeoutSec, e.IntervalSec,
		boolToInt(e.IsActive), boolToInt(e.IsPublic), e.Position, time.Now().UTC(), e.ID)
	return err
}

func (s *monitoringStore) DeleteEndpoint(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id=?`, id)
	return err
}

func (s *monitoringStore) GetEndpoint(ctx context.Context, id int64) (*Endpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, url, expected_status, timeout_sec, interval_sec, is_active, is_public, position, created_at, updated_at
		FROM endpoints WHERE id=?`, id)
	return scanEndpoint(row)
}

func (s *monitoringStore) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	return s.listEndpoints(ctx, `
		SELECT id, name, url, expected_status, timeout_sec, interval_sec, is_active, is_public, position, created_at, updated_at
		FROM endpoints ORDER BY position, name`)
}

func (s *monitoringStore) ListActiveEndpoints(ctx context.Context) ([]Endpoint, error) {
	return s.listEndpoints(ctx, `
		SELECT id, name, url, expected_status, timeout_sec, interval_sec, is_active, is_public, position, created_at, updated_at
		FROM endpoints WHERE is_active=1 ORDER BY position, name`)
}

func (s *monitoringStore) listEndpoints(ctx context.Context, query string) ([]Endpoint, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Endpoint
	for rows.Next() {
		var e Endpoint
		var active, public int
		if err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.ExpectedStatus, &e.TimeoutSec, &e.IntervalSec, &active, &public, &e.Position, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.IsActive = active == 1
		e.IsPublic = public == 1
		res = append(res, e)
	}
	return res, rows.Err()
}

func scanEndpoint(row *sql.Row) (*Endpoint, error) {
	var e Endpoint
	var active, public int
	if err := row.Scan(&e.ID, &e.Name, &e.URL, &e.ExpectedStatus, &e.TimeoutSec, &e.IntervalSec, &active, &public, &e.Position, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.IsActive = active == 1
	e.IsPublic = public == 1
	return &e, nil
}
