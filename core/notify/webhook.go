package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"

	"github.com/gofrs/uuid/v5"
)

const webhookUserAgent = "statuspulse/1.0"

type webhookPayload struct {
	EventType string          `json:"event_type"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	API       webhookAPI      `json:"api"`
	Incident  webhookIncident `json:"incident"`
}

type webhookAPI struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	URL                string `json:"url"`
	MonitoringInterval int    `json:"monitoring_interval"`
	ExpectedStatusCode int    `json:"expected_status_code"`
}

type webhookIncident struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	// Present only when the incident is resolved.
	DowntimeMinutes *int64 `json:"downtime_minutes,omitempty"`
}

type WebhookSender struct {
	store  store.MonitoringStore
	logger *utils.Logger
	client *http.Client
}

func NewWebhookSender(st store.MonitoringStore, logger *utils.Logger) *WebhookSender {
	return &WebhookSender{
		store:  st,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver POSTs the event to url and records the attempt in the delivery log
// regardless of outcome. Errors never propagate past this boundary.
func (w *WebhookSender) Deliver(ctx context.Context, url string, ev Event) {
	payload := buildWebhookPayload(ev)
	raw, err := json.Marshal(payload)
	if err != nil {
		w.logger.Errorf("webhook payload marshal: %v", err)
		return
	}
	deliveryID := ""
	if id, err := uuid.NewV4(); err == nil {
		deliveryID = id.String()
	}
	delivery := &store.WebhookDelivery{
		ID:         deliveryID,
		WebhookURL: url,
		EventType:  string(ev.Kind),
		EndpointID: ev.Endpoint.ID,
		IncidentID: ev.Incident.ID,
		Payload:    string(raw),
	}
	start := time.Now()
	statusCode, err := w.post(ctx, url, raw, deliveryID)
	delivery.LatencyMs = int(time.Since(start).Milliseconds())
	if statusCode > 0 {
		code := statusCode
		delivery.StatusCode = &code
	}
	if err != nil {
		text := err.Error()
		delivery.Error = &text
		w.logger.Warnf("webhook delivery failed for endpoint %d: %v", ev.Endpoint.ID, err)
	} else if statusCode >= 200 && statusCode < 300 {
		delivery.Success = true
	} else {
		text := "non-2xx response"
		delivery.Error = &text
		w.logger.Warnf("webhook delivery for endpoint %d returned status %d", ev.Endpoint.ID, statusCode)
	}
	if err := w.store.AddWebhookDelivery(ctx, delivery); err != nil {
		w.logger.Errorf("webhook delivery log: %v", err)
	}
}

func (w *WebhookSender) post(ctx context.Context, url string, body []byte, deliveryID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	if deliveryID != "" {
		req.Header.Set("X-Statuspulse-Delivery", deliveryID)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

func buildWebhookPayload(ev Event) webhookPayload {
	incident := webhookIncident{
		ID:          ev.Incident.ID,
		Title:       ev.Incident.Title,
		Description: ev.Incident.Description,
		Status:      ev.Incident.Status,
		StartedAt:   ev.Incident.StartedAt,
		ResolvedAt:  ev.Incident.ResolvedAt,
	}
	if minutes, ok := ev.Incident.DowntimeMinutes(); ok {
		incident.DowntimeMinutes = &minutes
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return webhookPayload{
		EventType: string(ev.Kind),
		Status:    ev.StatusWord(),
		Timestamp: at.UTC(),
		API: webhookAPI{
			ID:                 ev.Endpoint.ID,
			Name:               ev.Endpoint.Name,
			URL:                ev.Endpoint.URL,
			MonitoringInterval: ev.Endpoint.IntervalSec,
			ExpectedStatusCode: ev.Endpoint.ExpectedStatus,
		},
		Incident: incident,
	}
}
