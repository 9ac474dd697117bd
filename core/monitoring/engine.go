package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"statuspulse/config"
	"statuspulse/core/notify"
	"statuspulse/core/store"
	"statuspulse/core/utils"
)

// EventPublisher receives state-change events for asynchronous delivery.
type EventPublisher interface {
	Publish(ev notify.Event)
}

// Engine drives the probe cycle: every tick it fans out one probe per active
// endpoint, waits for all of them, then runs the sequential
// persist/detect/incident phase per result. Ticks are serialized: a tick that
// would overlap a still-running one is skipped, preserving the tracker's
// single-writer assumption.
type Engine struct {
	store         store.MonitoringStore
	incidents     store.IncidentsStore
	events        EventPublisher
	prober        *Prober
	tracker       *StateTracker
	logger        *utils.Logger
	interval      time.Duration
	maxConcurrent int

	cancel   context.CancelFunc
	running  bool
	tickBusy bool
	inFlight map[int64]struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

func NewEngine(cfg config.SchedulerConfig, st store.MonitoringStore, incidents store.IncidentsStore, events EventPublisher, logger *utils.Logger) *Engine {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	maxConcurrent := cfg.MaxConcurrentProbes
	if maxConcurrent <= 0 {
		maxConcurrent = 20
	}
	return &Engine{
		store:         st,
		incidents:     incidents,
		events:        events,
		prober:        NewProber(),
		tracker:       NewStateTracker(),
		logger:        logger,
		interval:      interval,
		maxConcurrent: maxConcurrent,
		inFlight:      map[int64]struct{}{},
	}
}

func (e *Engine) Start() {
	e.StartWithContext(context.Background())
}

func (e *Engine) StartWithContext(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.wg.Add(1)
	e.mu.Unlock()
	go e.loop(runCtx)
}

func (e *Engine) Stop() {
	_ = e.StopWithContext(context.Background())
}

func (e *Engine) StopWithContext(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel == nil || !e.running {
		e.mu.Unlock()
		return nil
	}
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	cancel()
	waitDone := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()
	e.reconcileStartupState(ctx)
	e.RunTick(ctx)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.RunTick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// reconcileStartupState seeds the tracker as "down" for every endpoint that
// still has an open incident, so the first post-restart probe resolves the
// incident on recovery instead of treating it as a first observation, and a
// still-failing endpoint does not open a duplicate.
func (e *Engine) reconcileStartupState(ctx context.Context) {
	endpoints, err := e.store.ListActiveEndpoints(ctx)
	if err != nil {
		e.logger.Errorf("startup reconcile: %v", err)
		return
	}
	for _, ep := range endpoints {
		open, err := e.incidents.FindOpenIncident(ctx, ep.ID)
		if err != nil {
			e.logger.Errorf("startup reconcile endpoint %d: %v", ep.ID, err)
			continue
		}
		if open != nil {
			e.tracker.Seed(ep.ID, store.PingFailure)
		}
	}
}

// RunTick executes one full probe cycle. Exported so a manual trigger and
// tests can drive the engine without the ticker.
func (e *Engine) RunTick(ctx context.Context) {
	if !e.beginTick() {
		e.logger.Warnf("previous probe tick still running, skipping")
		return
	}
	defer e.endTick()
	endpoints, err := e.store.ListActiveEndpoints(ctx)
	if err != nil {
		e.logger.Errorf("list active endpoints: %v", err)
		return
	}
	if len(endpoints) == 0 {
		return
	}
	results := e.probeAll(ctx, endpoints)
	for i, ep := range endpoints {
		if results[i] == nil {
			continue
		}
		e.process(ctx, ep, *results[i])
	}
}

func (e *Engine) beginTick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tickBusy {
		return false
	}
	e.tickBusy = true
	return true
}

func (e *Engine) endTick() {
	e.mu.Lock()
	e.tickBusy = false
	e.mu.Unlock()
}

// probeAll fans out one goroutine per endpoint, bounded by maxConcurrent,
// and waits for every probe to finish. A nil slot means the endpoint was
// skipped because a manual check held it.
func (e *Engine) probeAll(ctx context.Context, endpoints []store.Endpoint) []*ProbeResult {
	results := make([]*ProbeResult, len(endpoints))
	sem := make(chan struct{}, e.maxConcurrent)
	var wg sync.WaitGroup
	for i, ep := range endpoints {
		if !e.acquireSlot(ep.ID) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ep store.Endpoint) {
			defer wg.Done()
			defer func() { <-sem }()
			defer e.releaseSlot(ep.ID)
			res := e.prober.Probe(ctx, ep)
			results[i] = &res
		}(i, ep)
	}
	wg.Wait()
	return results
}

func (e *Engine) acquireSlot(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inFlight[id]; ok {
		return false
	}
	e.inFlight[id] = struct{}{}
	return true
}

func (e *Engine) releaseSlot(id int64) {
	e.mu.Lock()
	delete(e.inFlight, id)
	e.mu.Unlock()
}

// CheckNow probes a single endpoint immediately through the same
// record/detect/incident path as a scheduled tick.
func (e *Engine) CheckNow(ctx context.Context, endpointID int64) error {
	ep, err := e.store.GetEndpoint(ctx, endpointID)
	if err != nil {
		return err
	}
	if ep == nil {
		return errors.New("endpoint not found")
	}
	if !ep.IsActive {
		return errors.New("endpoint is not active")
	}
	if !e.acquireSlot(ep.ID) {
		return errors.New("check already in progress")
	}
	defer e.releaseSlot(ep.ID)
	res := e.prober.Probe(ctx, *ep)
	e.process(ctx, *ep, res)
	return nil
}

// process is the sequential per-result phase: persist the record, classify
// the transition, then run the incident lifecycle. A persistence failure is
// logged and the rest of the phase still runs.
func (e *Engine) process(ctx context.Context, ep store.Endpoint, res ProbeResult) {
	rec := recordFromResult(ep, res)
	if _, err := e.store.AddPingRecord(ctx, &rec); err != nil {
		e.logger.Errorf("record ping for endpoint %d: %v", ep.ID, err)
	}
	tr := e.tracker.Observe(ep.ID, res.Status)
	switch tr {
	case TransitionUpToDown, TransitionFirstDown:
		e.logEvent(ctx, ep.ID, "down", probeReason(res), res.CheckedAt)
		e.openIncident(ctx, ep, res)
	case TransitionDownToUp:
		e.logEvent(ctx, ep.ID, "up", "", res.CheckedAt)
		e.resolveIncident(ctx, ep, res)
	}
}

func (e *Engine) logEvent(ctx context.Context, endpointID int64, eventType, message string, ts time.Time) {
	_, err := e.store.AddEvent(ctx, &store.EndpointEvent{
		EndpointID: endpointID,
		TS:         ts,
		EventType:  eventType,
		Message:    message,
	})
	if err != nil {
		e.logger.Errorf("endpoint event: %v", err)
	}
}

func recordFromResult(ep store.Endpoint, res ProbeResult) store.PingRecord {
	rec := store.PingRecord{
		EndpointID:      ep.ID,
		Status:          res.Status,
		StatusCode:      res.StatusCode,
		LatencyMs:       int(res.Latency.Milliseconds()),
		ResponseBody:    res.ResponseBody,
		ResponseHeaders: res.ResponseHeaders,
		CheckedAt:       res.CheckedAt,
	}
	if res.Error != "" {
		text := res.Error
		rec.Error = &text
	}
	return rec
}

func probeReason(res ProbeResult) string {
	if res.Error != "" {
		return res.Error
	}
	if res.StatusCode != nil {
		return fmt.Sprintf("status %d", *res.StatusCode)
	}
	return "unreachable"
}
