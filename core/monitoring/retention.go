package monitoring

import (
	"context"
	"time"

	"statuspulse/core/store"
	"statuspulse/core/utils"
)

// Sweeper purges ping records older than the retention horizon. Incidents and
// uptime summaries are never touched: they remain the durable long-term
// signal after the raw pings are gone.
type Sweeper struct {
	store  store.MonitoringStore
	logger *utils.Logger
	days   int
}

func NewSweeper(st store.MonitoringStore, retentionDays int, logger *utils.Logger) *Sweeper {
	return &Sweeper{store: st, logger: logger, days: retentionDays}
}

func (s *Sweeper) Run(ctx context.Context) error {
	if s.days <= 0 {
		return nil
	}
	before := time.Now().UTC().AddDate(0, 0, -s.days)
	deleted, err := s.store.DeletePingRecordsBefore(ctx, before)
	if err != nil {
		s.logger.Errorf("retention sweep: %v", err)
		return err
	}
	if deleted > 0 {
		s.logger.Infof("retention sweep deleted %d ping records older than %s", deleted, before.Format(time.RFC3339))
	}
	return nil
}
