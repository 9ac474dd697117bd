package store

import (
	"context"
	"database/sql"
	"fmt"

	"statuspulse/core/utils"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS endpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		expected_status INTEGER NOT NULL DEFAULT 200,
		timeout_sec INTEGER NOT NULL DEFAULT 10,
		interval_sec INTEGER NOT NULL DEFAULT 60,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_public INTEGER NOT NULL DEFAULT 1,
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ping_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		status_code INTEGER,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		response_body TEXT,
		response_headers_json TEXT,
		checked_at TIMESTAMP NOT NULL,
		FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ping_records_endpoint_ts ON ping_records(endpoint_id, checked_at);`,
	`CREATE INDEX IF NOT EXISTS idx_ping_records_ts ON ping_records(checked_at);`,
	`CREATE TABLE IF NOT EXISTS incidents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ongoing',
		started_at TIMESTAMP NOT NULL,
		resolved_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_endpoint_started ON incidents(endpoint_id, started_at);`,
	`CREATE TABLE IF NOT EXISTS uptime_summaries (
		endpoint_id INTEGER NOT NULL,
		period TEXT NOT NULL,
		uptime_pct REAL NOT NULL DEFAULT 0,
		total_pings INTEGER NOT NULL DEFAULT 0,
		successful_pings INTEGER NOT NULL DEFAULT 0,
		failed_pings INTEGER NOT NULL DEFAULT 0,
		avg_response_ms REAL NOT NULL DEFAULT 0,
		calculated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (endpoint_id, period),
		FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS endpoint_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint_id INTEGER NOT NULL,
		ts TIMESTAMP NOT NULL,
		event_type TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		FOREIGN KEY(endpoint_id) REFERENCES endpoints(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_endpoint_events_endpoint_ts ON endpoint_events(endpoint_id, ts);`,
	`CREATE TABLE IF NOT EXISTS notification_settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		smtp_host TEXT NOT NULL DEFAULT '',
		smtp_port INTEGER NOT NULL DEFAULT 0,
		smtp_user TEXT NOT NULL DEFAULT '',
		smtp_password TEXT NOT NULL DEFAULT '',
		email_from TEXT NOT NULL DEFAULT '',
		recipients_json TEXT NOT NULL DEFAULT '[]',
		webhook_url TEXT NOT NULL DEFAULT '',
		webhook_enabled INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS webhook_deliveries (
		id TEXT PRIMARY KEY,
		webhook_url TEXT NOT NULL,
		event_type TEXT NOT NULL,
		endpoint_id INTEGER NOT NULL,
		incident_id INTEGER NOT NULL,
		payload TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER,
		error TEXT,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_created ON webhook_deliveries(created_at);`,
}

func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration #%d failed: %w", i+1, err)
		}
	}
	logger.Printf("schema migrations applied")
	return nil
}
