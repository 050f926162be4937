package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SweepScheduler owns the periodic execution of the lifecycle sweep.
// Its lifetime is explicit: the composition root starts it after the
// rest of the wiring is up and shuts it down on process exit, and
// tests drive the sweeper directly instead of going through a timer.
type SweepScheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

func NewSweepScheduler(interval time.Duration, sweeper *SweeperService, logger *slog.Logger) (*SweepScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if err := sweeper.RunOnce(ctx); err != nil {
				logger.Error("lifecycle sweep finished with errors",
					slog.String("category", LogCategorySystem),
					slog.Any("error", err),
				)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register sweep job: %w", err)
	}

	return &SweepScheduler{scheduler: sched, logger: logger}, nil
}

func (s *SweepScheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("lifecycle sweep scheduler started",
		slog.String("category", LogCategorySystem),
	)
}

func (s *SweepScheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	s.logger.Info("lifecycle sweep scheduler stopped",
		slog.String("category", LogCategorySystem),
	)
	return nil
}
