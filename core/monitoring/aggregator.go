package monitoring

import (
	"context"
	"math"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"
)

var uptimeWindows = []struct {
	Period string
	Span   time.Duration
}{
	{store.Period24h, 24 * time.Hour},
	{store.Period7d, 7 * 24 * time.Hour},
	{store.Period30d, 30 * 24 * time.Hour},
	{store.Period90d, 90 * 24 * time.Hour},
}

// Aggregator recomputes the rolling uptime summaries from raw ping history.
// Summaries are a cache: dropping the table and re-running the aggregator
// rebuilds them with no data loss.
type Aggregator struct {
	store  store.MonitoringStore
	logger *utils.Logger
}

func NewAggregator(st store.MonitoringStore, logger *utils.Logger) *Aggregator {
	return &Aggregator{store: st, logger: logger}
}

func (a *Aggregator) Run(ctx context.Context) error {
	endpoints, err := a.store.ListActiveEndpoints(ctx)
	if err != nil {
		a.logger.Errorf("uptime aggregation list endpoints: %v", err)
		return err
	}
	now := time.Now().UTC()
	for _, ep := range endpoints {
		for _, window := range uptimeWindows {
			ok, total, avg, err := a.store.PingSummary(ctx, ep.ID, now.Add(-window.Span))
			if err != nil {
				a.logger.Errorf("uptime aggregation endpoint %d %s: %v", ep.ID, window.Period, err)
				continue
			}
			summary := &store.UptimeSummary{
				EndpointID:      ep.ID,
				Period:          window.Period,
				UptimePct:       uptimePct(ok, total),
				TotalPings:      total,
				SuccessfulPings: ok,
				FailedPings:     total - ok,
				AvgResponseMs:   avg,
				CalculatedAt:    now,
			}
			if err := a.store.UpsertUptimeSummary(ctx, summary); err != nil {
				a.logger.Errorf("uptime aggregation upsert endpoint %d %s: %v", ep.ID, window.Period, err)
			}
		}
	}
	return nil
}

// uptimePct returns successes/total as a percentage rounded to 2 decimal
// places, and 0 for an empty window.
func uptimePct(ok, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(ok)/float64(total)*10000) / 100
}
