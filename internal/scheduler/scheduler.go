package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/cmatteri/wxplot/internal/store"
)

// StatsSource reports summary statistics for one archive table.
type StatsSource interface {
	Stats(ctx context.Context, table string) (store.ArchiveStats, error)
}

// Scheduler periodically logs archive statistics per binding, giving
// operators a heartbeat that the archive is still growing.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    StatsSource
	bindings  map[string]string
	interval  time.Duration
	log       *zap.Logger
}

// New creates a Scheduler over the given binding→table map.
func New(bindings map[string]string, interval time.Duration, source StatsSource, log *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		bindings:  bindings,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || len(s.bindings) == 0 {
		s.log.Info("scheduler: stats job disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for binding, table := range s.bindings {
			stats, err := s.source.Stats(ctx, table)
			if err != nil {
				s.log.Warn("archive stats failed",
					zap.String("binding", binding),
					zap.Error(err))
				continue
			}
			s.log.Info("archive stats",
				zap.String("binding", binding),
				zap.Int64("rows", stats.Rows),
				zap.Int64("latest", stats.Latest))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
