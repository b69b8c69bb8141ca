package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper expires idle sessions of a Registry on a cron schedule
type Sweeper struct {
	cron     *cron.Cron
	registry *Registry
	maxIdle  time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper for registry. Sessions idle longer than maxIdle are removed.
func NewSweeper(registry *Registry, maxIdle time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))

	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger))),
		registry: registry,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

// Start schedules the sweep with a cron spec such as "@every 5m" and starts the scheduler
func (s *Sweeper) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("failed to schedule session sweep %q: %w", schedule, err)
	}
	s.logger.Info("scheduled session sweep", "schedule", schedule, "max_idle", s.maxIdle)

	s.cron.Start()
	return nil
}

// Sweep expires idle sessions once and returns how many were removed
func (s *Sweeper) Sweep() int {
	n := s.registry.ExpireIdle(s.maxIdle)
	s.logger.Debug("session sweep finished", "expired", n, "live", s.registry.Len())
	return n
}

// Stop stops the scheduler. The returned context is done once a running sweep completes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}
