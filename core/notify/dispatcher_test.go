package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"

	"github.com/stretchr/testify/require"
)

type fakeMailSender struct {
	mu   sync.Mutex
	sent []EmailMessage
}

func (f *fakeMailSender) Send(settings store.NotificationSettings, msg EmailMessage) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakeMailSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func configureEmail(t *testing.T, ms store.MonitoringStore) {
	t.Helper()
	ctx := context.Background()
	settings, err := ms.GetNotificationSettings(ctx)
	require.NoError(t, err)
	settings.SMTPHost = "smtp.example.com"
	settings.SMTPPort = 587
	settings.SMTPUser = "alerts@example.com"
	settings.Recipients = []string{"ops@example.com"}
	require.NoError(t, ms.UpdateNotificationSettings(ctx, settings))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition never met")
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatcherDeliversEmail(t *testing.T) {
	ms := newTestStore(t)
	configureEmail(t, ms)
	mail := &fakeMailSender{}
	dispatcher := NewDispatcher(ms, utils.NewLogger())
	dispatcher.SetMailSender(mail)
	dispatcher.Start()
	defer dispatcher.Stop()

	dispatcher.Publish(sampleEvent(EventDown, false))

	waitFor(t, func() bool { return mail.count() == 1 })
	mail.mu.Lock()
	require.Contains(t, mail.sent[0].Subject, "DOWN: api")
	require.Contains(t, mail.sent[0].Body, "expected status 200, got 500")
	mail.mu.Unlock()

	// Webhook channel was never configured, nothing logged.
	deliveries, err := ms.ListWebhookDeliveries(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, deliveries)
}

func TestDispatcherDeliversWebhook(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()
	settings, err := ms.GetNotificationSettings(ctx)
	require.NoError(t, err)
	settings.WebhookURL = server.URL
	settings.WebhookEnabled = true
	require.NoError(t, ms.UpdateNotificationSettings(ctx, settings))

	mail := &fakeMailSender{}
	dispatcher := NewDispatcher(ms, utils.NewLogger())
	dispatcher.SetMailSender(mail)
	dispatcher.Start()
	defer dispatcher.Stop()

	dispatcher.Publish(sampleEvent(EventUp, true))

	waitFor(t, func() bool {
		deliveries, err := ms.ListWebhookDeliveries(ctx, 10)
		require.NoError(t, err)
		return len(deliveries) == 1
	})
	require.Zero(t, mail.count())
}

func TestDispatcherSkipsUnconfiguredChannels(t *testing.T) {
	ms := newTestStore(t)
	mail := &fakeMailSender{}
	dispatcher := NewDispatcher(ms, utils.NewLogger())
	dispatcher.SetMailSender(mail)
	dispatcher.Start()
	defer dispatcher.Stop()

	dispatcher.Publish(sampleEvent(EventDown, false))

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, mail.count())
	deliveries, err := ms.ListWebhookDeliveries(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, deliveries)
}

func TestPublishNeverBlocks(t *testing.T) {
	ms := newTestStore(t)
	// Not started: nothing drains the queue.
	dispatcher := NewDispatcher(ms, utils.NewLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+50; i++ {
			dispatcher.Publish(sampleEvent(EventDown, false))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	dispatcher := NewDispatcher(newTestStore(t), utils.NewLogger())
	dispatcher.Start()
	dispatcher.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, dispatcher.StopWithContext(ctx))
	require.NoError(t, dispatcher.StopWithContext(ctx))
}

func TestBuildEmail(t *testing.T) {
	down := BuildEmail(sampleEvent(EventDown, false))
	require.Equal(t, "[statuspulse] DOWN: api is unreachable", down.Subject)
	require.Contains(t, down.Body, "Endpoint: api")
	require.Contains(t, down.Body, "Reason: expected status 200, got 500")

	up := BuildEmail(sampleEvent(EventUp, true))
	require.Equal(t, "[statuspulse] RECOVERED: api is back up", up.Subject)
	require.Contains(t, up.Body, "Resolved at: 2026-03-14T09:05:00Z")
	require.Contains(t, up.Body, "Downtime: 5 minutes")
}
