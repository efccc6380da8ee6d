/**
 * @description
 * Cron scheduler for background jobs. The only job probes the upstream
 * collections so credential or sharing problems surface in the logs before
 * a request hits them.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron          *cron.Cron
	probe         *UpstreamProbe
	probeSchedule string
	logger        *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(probe *UpstreamProbe, probeSchedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:          c,
		probe:         probe,
		probeSchedule: probeSchedule,
		logger:        logger,
	}
}

// Start registers the jobs and starts the cron scheduler. An empty schedule
// disables the probe.
func (s *Scheduler) Start() error {
	if s.probeSchedule == "" {
		s.logger.Info("upstream probe disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.probeSchedule, s.probe.Run); err != nil {
		return err
	}
	s.logger.Info("scheduled upstream probe", "schedule", s.probeSchedule)
	s.cron.Start()
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Stop stops the cron scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
