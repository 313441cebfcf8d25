package jobs

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/edusite/edusite-api/pkg/config"
)

// Scheduler runs periodic maintenance jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler wires the inactivity sweep onto its cron schedule.
func NewScheduler(cfg config.JobsConfig, logger *slog.Logger, sweep *InactivitySweepJob) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.SweepTimeZone)
	if err != nil {
		return nil, fmt.Errorf("load job timezone: %w", err)
	}

	c := cron.New(cron.WithLocation(location))

	_, err = c.AddFunc(cfg.SweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := sweep.Run(ctx)
		if err != nil {
			logger.Error("inactivity sweep failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("inactivity sweep completed", slog.Int("deactivated", count))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule inactivity sweep: %w", err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("job scheduler stopped")
}
