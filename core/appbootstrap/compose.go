package appbootstrap

import (
	"context"
	"database/sql"

	"statuspulse/config"
	"statuspulse/core/monitoring"
	"statuspulse/core/notify"
	"statuspulse/core/store"
	"statuspulse/core/utils"

	"github.com/robfig/cron/v3"
)

// BackgroundWorker is anything with the engine/dispatcher lifecycle shape.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context)
	StopWithContext(ctx context.Context) error
}

type Runtime struct {
	Monitoring store.MonitoringStore
	Incidents  store.IncidentsStore
	Engine     *monitoring.Engine
	Dispatcher *notify.Dispatcher
	Cron       *cron.Cron
	Workers    []BackgroundWorker
}

// Compose wires stores, the probe engine, the notification dispatcher and
// the periodic jobs. Cron entries: uptime aggregation hourly, retention
// sweep daily, both independent of the probe tick.
func Compose(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*Runtime, error) {
	monitoringStore := store.NewMonitoringStore(db)
	incidentsStore := store.NewIncidentsStore(db)

	dispatcher := notify.NewDispatcher(monitoringStore, logger)
	engine := monitoring.NewEngine(cfg.Scheduler, monitoringStore, incidentsStore, dispatcher, logger)
	aggregator := monitoring.NewAggregator(monitoringStore, logger)
	sweeper := monitoring.NewSweeper(monitoringStore, cfg.Retention.Days, logger)

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.Aggregation.CronSpec, func() {
		_ = aggregator.Run(context.Background())
	}); err != nil {
		return nil, err
	}
	if _, err := jobs.AddFunc(cfg.Retention.CronSpec, func() {
		_ = sweeper.Run(context.Background())
	}); err != nil {
		return nil, err
	}

	return &Runtime{
		Monitoring: monitoringStore,
		Incidents:  incidentsStore,
		Engine:     engine,
		Dispatcher: dispatcher,
		Cron:       jobs,
		Workers:    []BackgroundWorker{dispatcher, engine},
	}, nil
}
