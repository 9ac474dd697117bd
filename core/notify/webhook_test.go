package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"statuspulse/config"
	"statuspulse/core/store"
	"statuspulse/core/utils"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.MonitoringStore {
	t.Helper()
	cfg := &config.AppConfig{DBDriver: "sqlite", DBURL: filepath.Join(t.TempDir(), "test.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.ApplyMigrations(context.Background(), db, logger))
	return store.NewMonitoringStore(db)
}

func sampleEvent(kind EventKind, resolved bool) Event {
	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	incident := store.Incident{
		ID:          42,
		EndpointID:  7,
		Title:       "api is down",
		Description: "health check failed",
		Status:      store.IncidentOngoing,
		StartedAt:   startedAt,
	}
	if resolved {
		resolvedAt := startedAt.Add(5 * time.Minute)
		incident.Status = store.IncidentResolved
		incident.ResolvedAt = &resolvedAt
	}
	return Event{
		Kind: kind,
		Endpoint: store.Endpoint{
			ID: 7, Name: "api", URL: "https://api.example.com/health",
			ExpectedStatus: 200, IntervalSec: 60,
		},
		Incident: incident,
		Reason:   "expected status 200, got 500",
		At:       startedAt,
	}
}

func TestWebhookPayloadForOpenIncident(t *testing.T) {
	payload := buildWebhookPayload(sampleEvent(EventDown, false))
	require.Equal(t, "api_down", payload.EventType)
	require.Equal(t, "down", payload.Status)
	require.Equal(t, int64(7), payload.API.ID)
	require.Equal(t, 60, payload.API.MonitoringInterval)
	require.Nil(t, payload.Incident.DowntimeMinutes)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	incident := decoded["incident"].(map[string]any)
	// Unresolved: resolved_at is an explicit null, downtime is omitted.
	require.Contains(t, incident, "resolved_at")
	require.Nil(t, incident["resolved_at"])
	require.NotContains(t, incident, "downtime_minutes")
}

func TestWebhookPayloadForResolvedIncident(t *testing.T) {
	payload := buildWebhookPayload(sampleEvent(EventUp, true))
	require.Equal(t, "api_up", payload.EventType)
	require.Equal(t, "up", payload.Status)
	require.NotNil(t, payload.Incident.DowntimeMinutes)
	require.EqualValues(t, 5, *payload.Incident.DowntimeMinutes)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	incident := decoded["incident"].(map[string]any)
	require.NotNil(t, incident["resolved_at"])
	require.EqualValues(t, 5, incident["downtime_minutes"])
}

func TestWebhookDeliverLogsSuccess(t *testing.T) {
	ms := newTestStore(t)
	var mu sync.Mutex
	var gotBody []byte
	var gotHeader http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		mu.Unlock()
	}))
	defer server.Close()

	sender := NewWebhookSender(ms, utils.NewLogger())
	sender.Deliver(context.Background(), server.URL, sampleEvent(EventDown, false))

	mu.Lock()
	require.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	require.Equal(t, webhookUserAgent, gotHeader.Get("User-Agent"))
	deliveryID := gotHeader.Get("X-Statuspulse-Delivery")
	require.NotEmpty(t, deliveryID)
	var payload webhookPayload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Equal(t, "api_down", payload.EventType)
	mu.Unlock()

	deliveries, err := ms.ListWebhookDeliveries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.Equal(t, deliveryID, deliveries[0].ID)
	require.True(t, deliveries[0].Success)
	require.NotNil(t, deliveries[0].StatusCode)
	require.Equal(t, 200, *deliveries[0].StatusCode)
	require.Nil(t, deliveries[0].Error)
}

func TestWebhookDeliverLogsNon2xx(t *testing.T) {
	ms := newTestStore(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	NewWebhookSender(ms, utils.NewLogger()).Deliver(context.Background(), server.URL, sampleEvent(EventDown, false))

	deliveries, err := ms.ListWebhookDeliveries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.False(t, deliveries[0].Success)
	require.NotNil(t, deliveries[0].StatusCode)
	require.Equal(t, 502, *deliveries[0].StatusCode)
	require.NotNil(t, deliveries[0].Error)
}

func TestWebhookDeliverLogsTransportError(t *testing.T) {
	ms := newTestStore(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	NewWebhookSender(ms, utils.NewLogger()).Deliver(context.Background(), url, sampleEvent(EventUp, true))

	deliveries, err := ms.ListWebhookDeliveries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.False(t, deliveries[0].Success)
	require.Nil(t, deliveries[0].StatusCode)
	require.NotNil(t, deliveries[0].Error)
}
