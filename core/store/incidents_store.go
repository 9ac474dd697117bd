package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

func (s *incidentsStore) CreateIncident(ctx context.Context, incident *Incident) (int64, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(incident.Status) == "" {
		incident.Status = IncidentOngoing
	}
	if incident.StartedAt.IsZero() {
		incident.StartedAt = now
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents(endpoint_id, title, description, status, started_at, resolved_at, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		incident.EndpointID, strings.TrimSpace(incident.Title), incident.Description, incident.Status,
		incident.StartedAt.UTC(), nullableTime(incident.ResolvedAt), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	incident.ID = id
	incident.CreatedAt = now
	incident.UpdatedAt = now
	return id, nil
}

func (s *incidentsStore) GetIncident(ctx context.Context, id int64) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, endpoint_id, title, description, status, started_at, resolved_at, created_at, updated_at
		FROM incidents WHERE id=?`, id)
	return scanIncident(row)
}

func (s *incidentsStore) ListIncidents(ctx context.Context, endpointID int64, limit int) ([]Incident, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, endpoint_id, title, description, status, started_at, resolved_at, created_at, updated_at
		FROM incidents`
	var args []any
	if endpointID > 0 {
		query += ` WHERE endpoint_id=?`
		args = append(args, endpointID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Incident
	for rows.Next() {
		var incident Incident
		var resolvedAt sql.NullTime
		if err := rows.Scan(&incident.ID, &incident.EndpointID, &incident.Title, &incident.Description, &incident.Status,
			&incident.StartedAt, &resolvedAt, &incident.CreatedAt, &incident.UpdatedAt); err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			incident.ResolvedAt = &resolvedAt.Time
		}
		res = append(res, incident)
	}
	return res, rows.Err()
}

// FindOpenIncident returns the most recently started non-resolved incident
// for the endpoint, or nil when there is none. "Non-resolved" covers the
// operator-driven intermediate states as well.
func (s *incidentsStore) FindOpenIncident(ctx context.Context, endpointID int64) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, endpoint_id, title, description, status, started_at, resolved_at, created_at, updated_at
		FROM incidents
		WHERE endpoint_id=? AND status!='resolved'
		ORDER BY started_at DESC LIMIT 1`, endpointID)
	return scanIncident(row)
}

// ResolveIncident marks the incident resolved and appends note to its
// description. Returns ErrConflict when the incident is already resolved,
// which makes concurrent auto-resolves a no-op for the loser.
func (s *incidentsStore) ResolveIncident(ctx context.Context, id int64, resolvedAt time.Time, note string) (*Incident, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE incidents
		SET status='resolved', resolved_at=?, description=description || ?, updated_at=?
		WHERE id=? AND status!='resolved'`,
		resolvedAt.UTC(), note, now, id)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrConflict
	}
	return s.GetIncident(ctx, id)
}

func (s *incidentsStore) UpdateIncidentStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case IncidentOngoing, IncidentIdentified, IncidentMonitoring, IncidentResolved:
	default:
		return errors.New("invalid incident status")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE incidents SET status=?, updated_at=? WHERE id=?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	return nil
}

func scanIncident(row *sql.Row) (*Incident, error) {
	var incident Incident
	var resolvedAt sql.NullTime
	if err := row.Scan(&incident.ID, &incident.EndpointID, &incident.Title, &incident.Description, &incident.Status,
		&incident.StartedAt, &resolvedAt, &incident.CreatedAt, &incident.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if resolvedAt.Valid {
		incident.ResolvedAt = &resolvedAt.Time
	}
	return &incident, nil
}
