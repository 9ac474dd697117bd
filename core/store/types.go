package store

import (
	"math"
	"time"
)

const (
	PingSuccess = "success"
	PingFailure = "failure"
	PingTimeout = "timeout"
)

const (
	IncidentOngoing    = "ongoing"
	IncidentIdentified = "identified"
	IncidentMonitoring = "monitoring"
	IncidentResolved   = "resolved"
)

// Uptime summary windows, from shortest to longest.
const (
	Period24h = "24h"
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
)

type Endpoint struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	ExpectedStatus int       `json:"expected_status"`
	TimeoutSec     int       `json:"timeout_sec"`
	IntervalSec    int       `json:"interval_sec"`
	IsActive       bool      `json:"is_active"`
	IsPublic       bool      `json:"is_public"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PingRecord is one probe outcome. Rows are append-only: nothing mutates them
// and only the retention sweeper deletes them.
type PingRecord struct {
	ID              int64             `json:"id"`
	EndpointID      int64             `json:"endpoint_id"`
	Status          string            `json:"status"`
	StatusCode      *int              `json:"status_code,omitempty"`
	LatencyMs       int               `json:"latency_ms"`
	Error           *string           `json:"error,omitempty"`
	ResponseBody    *string           `json:"response_body,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	CheckedAt       time.Time         `json:"checked_at"`
}

type Incident struct {
	ID          int64      `json:"id"`
	EndpointID  int64      `json:"endpoint_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Open reports whether the incident still counts as unresolved. Operators may
// move an incident through "identified" and "monitoring" before it resolves,
// so anything except "resolved" is open.
func (i Incident) Open() bool {
	return i.Status != IncidentResolved
}

// DowntimeMinutes returns the outage length rounded to whole minutes. The
// second return is false while the incident is unresolved.
func (i Incident) DowntimeMinutes() (int64, bool) {
	if i.ResolvedAt == nil {
		return 0, false
	}
	return int64(math.Round(i.ResolvedAt.Sub(i.StartedAt).Minutes())), true
}

type UptimeSummary struct {
	EndpointID      int64     `json:"endpoint_id"`
	Period          string    `json:"period"`
	UptimePct       float64   `json:"uptime_pct"`
	TotalPings      int       `json:"total_pings"`
	SuccessfulPings int       `json:"successful_pings"`
	FailedPings     int       `json:"failed_pings"`
	AvgResponseMs   float64   `json:"avg_response_ms"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

type NotificationSettings struct {
	ID             int64     `json:"id"`
	SMTPHost       string    `json:"smtp_host"`
	SMTPPort       int       `json:"smtp_port"`
	SMTPUser       string    `json:"smtp_user"`
	SMTPPassword   string    `json:"-"`
	EmailFrom      string    `json:"email_from"`
	Recipients     []string  `json:"recipients"`
	WebhookURL     string    `json:"webhook_url"`
	WebhookEnabled bool      `json:"webhook_enabled"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EmailConfigured reports whether the email channel has everything it needs.
// Missing configuration means "channel disabled", never an error.
func (s NotificationSettings) EmailConfigured() bool {
	return s.SMTPHost != "" && s.SMTPPort > 0 && s.SMTPUser != "" && len(s.Recipients) > 0
}

func (s NotificationSettings) WebhookConfigured() bool {
	return s.WebhookEnabled && s.WebhookURL != ""
}

// WebhookDelivery is one audit row per webhook attempt, success or failure.
type WebhookDelivery struct {
	ID         string    `json:"id"`
	WebhookURL string    `json:"webhook_url"`
	EventType  string    `json:"event_type"`
	EndpointID int64     `json:"endpoint_id"`
	IncidentID int64     `json:"incident_id"`
	Payload    string    `json:"payload"`
	Success    bool      `json:"success"`
	StatusCode *int      `json:"status_code,omitempty"`
	Error      *string   `json:"error,omitempty"`
	LatencyMs  int       `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type EndpointEvent struct {
	ID         int64     `json:"id"`
	EndpointID int64     `json:"endpoint_id"`
	TS         time.Time `json:"ts"`
	EventType  string    `json:"event_type"`
	Message    string    `json:"message"`
}
