package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	ExpireDepositsSpec = "@hourly"
	PurgeTokensSpec    = "@every 10m"
)

type DepositExpirer interface {
	ExpirePendingDeposits(ctx context.Context, olderThan time.Duration) (int, error)
}

type TokenPurger interface {
	PurgeRevoked(now time.Time) int
}

// Scheduler runs the background reconciliation jobs.
type Scheduler struct {
	cron       *cron.Cron
	deposits   DepositExpirer
	tokens     TokenPurger
	pendingTTL time.Duration
}

func NewScheduler(deposits DepositExpirer, tokens TokenPurger, pendingTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		deposits:   deposits,
		tokens:     tokens,
		pendingTTL: pendingTTL,
	}
}

// Start registers the jobs and starts the scheduler. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(ExpireDepositsSpec, func() { s.ExpireDeposits(ctx) })
	if err != nil {
		return fmt.Errorf("schedule deposit expiry: %w", err)
	}

	_, err = s.cron.AddFunc(PurgeTokensSpec, s.PurgeTokens)
	if err != nil {
		return fmt.Errorf("schedule token purge: %w", err)
	}

	s.cron.Start()
	log.Info("scheduler started")

	return nil
}

// Stop waits for running jobs or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

func (s *Scheduler) ExpireDeposits(ctx context.Context) {
	n, err := s.deposits.ExpirePendingDeposits(ctx, s.pendingTTL)
	if err != nil {
		log.WithError(err).Error("[CRON] expire pending deposits")
		return
	}
	if n > 0 {
		log.WithField("count", n).Info("[CRON] pending deposits expired")
	}
}

func (s *Scheduler) PurgeTokens() {
	n := s.tokens.PurgeRevoked(time.Now())
	if n > 0 {
		log.WithField("count", n).Debug("[CRON] revoked tokens purged")
	}
}
