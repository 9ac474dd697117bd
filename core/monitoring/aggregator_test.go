package monitoring

import (
	"context"
	"testing"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"

	"github.com/stretchr/testify/require"
)

func seedPings(t *testing.T, ms store.MonitoringStore, endpointID int64, total, failures int, span time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	step := span / time.Duration(total)
	for i := 0; i < total; i++ {
		status := store.PingSuccess
		latency := 100
		if i < failures {
			status = store.PingFailure
			latency = 0
		}
		rec := store.PingRecord{EndpointID: endpointID, Status: status, LatencyMs: latency, CheckedAt: now.Add(-time.Duration(i)*step - time.Second)}
		_, err := ms.AddPingRecord(ctx, &rec)
		require.NoError(t, err)
	}
}

func summaryFor(t *testing.T, summaries []store.UptimeSummary, period string) store.UptimeSummary {
	t.Helper()
	for _, s := range summaries {
		if s.Period == period {
			return s
		}
	}
	t.Fatalf("no summary for period %s", period)
	return store.UptimeSummary{}
}

func TestAggregatorComputesWindows(t *testing.T) {
	ms, _ := newTestStores(t)
	ctx := context.Background()
	ep := store.Endpoint{Name: "api", URL: "https://api.example.com", ExpectedStatus: 200, TimeoutSec: 5, IntervalSec: 60, IsActive: true}
	_, err := ms.CreateEndpoint(ctx, &ep)
	require.NoError(t, err)

	// 100 pings inside the last 24h, 5 of them failures.
	seedPings(t, ms, ep.ID, 100, 5, 23*time.Hour)

	require.NoError(t, NewAggregator(ms, utils.NewLogger()).Run(ctx))

	summaries, err := ms.ListUptimeSummaries(ctx, ep.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	day := summaryFor(t, summaries, store.Period24h)
	require.InDelta(t, 95.0, day.UptimePct, 0.001)
	require.Equal(t, 100, day.TotalPings)
	require.Equal(t, 95, day.SuccessfulPings)
	require.Equal(t, 5, day.FailedPings)
	require.InDelta(t, 100, day.AvgResponseMs, 0.001)

	// Wider windows see the same records.
	week := summaryFor(t, summaries, store.Period7d)
	require.Equal(t, 100, week.TotalPings)
}

func TestAggregatorEmptyWindowIsZero(t *testing.T) {
	ms, _ := newTestStores(t)
	ctx := context.Background()
	ep := store.Endpoint{Name: "quiet", URL: "https://quiet.example.com", ExpectedStatus: 200, TimeoutSec: 5, IntervalSec: 60, IsActive: true}
	_, err := ms.CreateEndpoint(ctx, &ep)
	require.NoError(t, err)

	require.NoError(t, NewAggregator(ms, utils.NewLogger()).Run(ctx))

	summaries, err := ms.ListUptimeSummaries(ctx, ep.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	for _, s := range summaries {
		require.Zero(t, s.UptimePct)
		require.Zero(t, s.TotalPings)
	}
}

func TestAggregatorRerunOverwrites(t *testing.T) {
	ms, _ := newTestStores(t)
	ctx := context.Background()
	ep := store.Endpoint{Name: "api", URL: "https://api.example.com", ExpectedStatus: 200, TimeoutSec: 5, IntervalSec: 60, IsActive: true}
	_, err := ms.CreateEndpoint(ctx, &ep)
	require.NoError(t, err)

	aggregator := NewAggregator(ms, utils.NewLogger())
	require.NoError(t, aggregator.Run(ctx))

	seedPings(t, ms, ep.ID, 10, 0, time.Hour)
	require.NoError(t, aggregator.Run(ctx))

	summaries, err := ms.ListUptimeSummaries(ctx, ep.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	day := summaryFor(t, summaries, store.Period24h)
	require.InDelta(t, 100.0, day.UptimePct, 0.001)
	require.Equal(t, 10, day.TotalPings)
}

func TestUptimePctRounding(t *testing.T) {
	require.Zero(t, uptimePct(0, 0))
	require.InDelta(t, 100.0, uptimePct(3, 3), 0.0001)
	require.InDelta(t, 66.67, uptimePct(2, 3), 0.0001)
	require.InDelta(t, 99.99, uptimePct(9999, 10000), 0.0001)
}
