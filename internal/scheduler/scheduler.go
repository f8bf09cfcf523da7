// Package scheduler wires up the cron job that sweeps due digest
// subscriptions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs all due subscriptions once.
type Sweeper interface {
	RunDue(ctx context.Context, now time.Time) error
}

// Scheduler wraps robfig/cron around the subscription sweep. The sweep
// itself is idempotent per cadence window, so an extra tick is
// harmless.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
	spec    string
}

// New creates a Scheduler that sweeps every interval.
func New(sweeper Sweeper, logger *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
		spec:    fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the sweep and starts ticking. One sweep also runs
// immediately so overdue subscriptions are not stuck waiting for the
// first tick after a restart.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("digest scheduler started", zap.String("spec", s.spec))

	go s.sweep(ctx)
	return nil
}

// Stop shuts the scheduler down. Running sweeps finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("digest scheduler stopped")
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now().UTC()
	if err := s.sweeper.RunDue(ctx, now); err != nil {
		s.logger.Error("subscription sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("subscription sweep complete")
}
