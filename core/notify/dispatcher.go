package notify

import (
	"context"
	"sync"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"
)

const (
	queueSize      = 256
	deliverTimeout = 30 * time.Second
)

// Dispatcher consumes state-change events on its own goroutine and fans them
// out to every enabled channel. Publish never blocks and never fails: a full
// queue drops the event with a log line, and channel errors stop at the
// channel boundary.
type Dispatcher struct {
	store   store.MonitoringStore
	logger  *utils.Logger
	mail    MailSender
	webhook *WebhookSender

	events  chan Event
	cancel  context.CancelFunc
	running bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewDispatcher(st store.MonitoringStore, logger *utils.Logger) *Dispatcher {
	return &Dispatcher{
		store:   st,
		logger:  logger,
		mail:    SMTPSender{},
		webhook: NewWebhookSender(st, logger),
		events:  make(chan Event, queueSize),
	}
}

// SetMailSender swaps the SMTP implementation, used by tests.
func (d *Dispatcher) SetMailSender(sender MailSender) {
	if d == nil || sender == nil {
		return
	}
	d.mail = sender
}

func (d *Dispatcher) Start() {
	d.StartWithContext(context.Background())
}

func (d *Dispatcher) StartWithContext(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.wg.Add(1)
	d.mu.Unlock()
	go d.loop(runCtx)
}

func (d *Dispatcher) Stop() {
	_ = d.StopWithContext(context.Background())
}

func (d *Dispatcher) StopWithContext(ctx context.Context) error {
	d.mu.Lock()
	if d.cancel == nil || !d.running {
		d.mu.Unlock()
		return nil
	}
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	cancel()
	waitDone := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish hands the event to the background worker without waiting for
// delivery. The caller's critical path is never delayed by SMTP or webhook
// latency.
func (d *Dispatcher) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case d.events <- ev:
	default:
		d.logger.Warnf("notification queue full, dropping %s event for endpoint %d", ev.Kind, ev.Endpoint.ID)
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	deliverCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	settings, err := d.store.GetNotificationSettings(deliverCtx)
	if err != nil {
		d.logger.Errorf("notification settings: %v", err)
		return
	}
	if settings.EmailConfigured() {
		if err := d.mail.Send(*settings, BuildEmail(ev)); err != nil {
			d.logger.Warnf("email delivery failed for endpoint %d: %v", ev.Endpoint.ID, err)
		}
	}
	if settings.WebhookConfigured() {
		d.webhook.Deliver(deliverCtx, settings.WebhookURL, ev)
	}
}
