package onboarding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/logger"
)

type expiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper hard-deletes expired pending sessions on a cron schedule.
// Reads already filter on the TTL, so the sweep is pure cleanup.
type Sweeper struct {
	store    expiredDeleter
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewSweeper(store expiredDeleter, cfg config.OnboardingConfig) *Sweeper {
	return &Sweeper{
		store:    store,
		schedule: cfg.SweepSchedule,
		cron:     cron.New(),
		logger:   logger.L.With(slog.String("service", "onboarding_sweeper")),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", slog.String("schedule", s.schedule))
	return nil
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	removed, err := s.store.DeleteExpired(context.Background())
	if err != nil {
		s.logger.Warn("session sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", slog.Int64("count", removed))
	}
}
