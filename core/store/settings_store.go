package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

func (s *monitoringStore) GetNotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, smtp_host, smtp_port, smtp_user, smtp_password, email_from, recipients_json, webhook_url, webhook_enabled, updated_at
		FROM notification_settings ORDER BY id LIMIT 1`)
	var settings NotificationSettings
	var recipientsJSON string
	var webhookEnabled int
	if err := row.Scan(&settings.ID, &settings.SMTPHost, &settings.SMTPPort, &settings.SMTPUser, &settings.SMTPPassword,
		&settings.EmailFrom, &recipientsJSON, &settings.WebhookURL, &webhookEnabled, &settings.UpdatedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		settings = NotificationSettings{UpdatedAt: time.Now().UTC()}
		if err := s.insertNotificationSettings(ctx, &settings); err != nil {
			return nil, err
		}
		return &settings, nil
	}
	settings.Recipients = recipientsFromJSON(recipientsJSON)
	settings.WebhookEnabled = webhookEnabled == 1
	return &settings, nil
}

func (s *monitoringStore) UpdateNotificationSettings(ctx context.Context, settings *NotificationSettings) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE notification_settings
		SET smtp_host=?, smtp_port=?, smtp_user=?, smtp_password=?, email_from=?, recipients_json=?, webhook_url=?, webhook_enabled=?, updated_at=?
		WHERE id=?`,
		strings.TrimSpace(settings.SMTPHost), settings.SMTPPort, strings.TrimSpace(settings.SMTPUser), settings.SMTPPassword,
		strings.TrimSpace(settings.EmailFrom), recipientsToJSON(settings.Recipients),
		strings.TrimSpace(settings.WebhookURL), boolToInt(settings.WebhookEnabled), now, settings.ID)
	if err != nil {
		return err
	}
	settings.UpdatedAt = now
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}
	return s.insertNotificationSettings(ctx, settings)
}

func (s *monitoringStore) insertNotificationSettings(ctx context.Context, settings *NotificationSettings) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_settings(smtp_host, smtp_port, smtp_user, smtp_password, email_from, recipients_json, webhook_url, webhook_enabled, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(settings.SMTPHost), settings.SMTPPort, strings.TrimSpace(settings.SMTPUser), settings.SMTPPassword,
		strings.TrimSpace(settings.EmailFrom), recipientsToJSON(settings.Recipients),
		strings.TrimSpace(settings.WebhookURL), boolToInt(settings.WebhookEnabled), settings.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	settings.ID = id
	return nil
}
