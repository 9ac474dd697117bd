package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrConflict = errors.New("conflict")

type MonitoringStore interface {
	CreateEndpoint(ctx context.Context, e *Endpoint) (int64, error)
	UpdateEndpoint(ctx context.Context, e *Endpoint) error
	DeleteEndpoint(ctx context.Context, id int64) error
	GetEndpoint(ctx context.Context, id int64) (*Endpoint, error)
	ListEndpoints(ctx context.Context) ([]Endpoint, error)
	ListActiveEndpoints(ctx context.Context) ([]Endpoint, error)

	AddPingRecord(ctx context.Context, rec *PingRecord) (int64, error)
	ListPingRecords(ctx context.Context, endpointID int64, since time.Time) ([]PingRecord, error)
	PingSummary(ctx context.Context, endpointID int64, since time.Time) (ok int, total int, avgLatency float64, err error)
	DeletePingRecordsBefore(ctx context.Context, before time.Time) (int64, error)

	UpsertUptimeSummary(ctx context.Context, s *UptimeSummary) error
	ListUptimeSummaries(ctx context.Context, endpointID int64) ([]UptimeSummary, error)

	AddEvent(ctx context.Context, ev *EndpointEvent) (int64, error)
	ListEvents(ctx context.Context, endpointID int64, since time.Time) ([]EndpointEvent, error)

	GetNotificationSettings(ctx context.Context) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, s *NotificationSettings) error

	AddWebhookDelivery(ctx context.Context, d *WebhookDelivery) error
	ListWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
}

type IncidentsStore interface {
	CreateIncident(ctx context.Context, incident *Incident) (int64, error)
	GetIncident(ctx context.Context, id int64) (*Incident, error)
	ListIncidents(ctx context.Context, endpointID int64, limit int) ([]Incident, error)
	FindOpenIncident(ctx context.Context, endpointID int64) (*Incident, error)
	ResolveIncident(ctx context.Context, id int64, resolvedAt time.Time, note string) (*Incident, error)
	UpdateIncidentStatus(ctx context.Context, id int64, status string) error
}

type monitoringStore struct {
	db *sql.DB
}

func NewMonitoringStore(db *sql.DB) MonitoringStore {
	return &monitoringStore{db: db}
}

type incidentsStore struct {
	db *sql.DB
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db}
}
