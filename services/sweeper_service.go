package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// sweepParallelism bounds how many tournaments one sweep works on
// concurrently.
const sweepParallelism = 4

// SweeperService advances tournament lifecycle states based on
// wall-clock time and settles terminal tournaments. Each tournament is
// an independent unit of work: a claim-style conditional UPDATE moves
// the status, so a sweep overlapping with a previous run (or another
// instance) can never apply a transition twice, and a failure on one
// tournament never blocks the rest of the batch.
type SweeperService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	rewards         *RewardService
	notifier        LiveNotifier
	logger          *slog.Logger
	now             func() time.Time
}

func NewSweeperService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	rewards *RewardService,
	notifier LiveNotifier,
	logger *slog.Logger,
) *SweeperService {
	return &SweeperService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		rewards:         rewards,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// SetClock replaces the wall-clock source. Intended for tests.
func (s *SweeperService) SetClock(now func() time.Time) {
	s.now = now
}

// RunOnce performs one full sweep: start (or cancel underfilled)
// tournaments whose startTime has passed, complete tournaments whose
// endTime has passed, then settle terminal tournaments that still owe
// payouts. Running it any number of times in succession yields the
// same states and the same total credits as running it once.
func (s *SweeperService) RunOnce(ctx context.Context) error {
	now := s.now()
	var errs []error

	if err := s.startDue(ctx, now); err != nil {
		errs = append(errs, err)
	}
	if err := s.completeDue(ctx, now); err != nil {
		errs = append(errs, err)
	}
	if err := s.settleUnsettled(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *SweeperService) startDue(ctx context.Context, now time.Time) error {
	due, err := s.tournamentRepo.ListDueForStart(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments due for start: %w", err)
	}
	return s.forEach(ctx, due, func(ctx context.Context, t *models.Tournament) error {
		count, err := s.participantRepo.CountByTournament(ctx, nil, t.ID)
		if err != nil {
			return fmt.Errorf("failed to count participants of %s: %w", t.ID, err)
		}
		if count < t.MinPlayers {
			return s.transition(ctx, t, models.StatusRegistering, models.StatusCancelled)
		}
		return s.transition(ctx, t, models.StatusRegistering, models.StatusInProgress)
	})
}

func (s *SweeperService) completeDue(ctx context.Context, now time.Time) error {
	due, err := s.tournamentRepo.ListDueForCompletion(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments due for completion: %w", err)
	}
	return s.forEach(ctx, due, func(ctx context.Context, t *models.Tournament) error {
		return s.transition(ctx, t, models.StatusInProgress, models.StatusCompleted)
	})
}

func (s *SweeperService) settleUnsettled(ctx context.Context) error {
	unsettled, err := s.tournamentRepo.ListUnsettled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unsettled tournaments: %w", err)
	}
	return s.forEach(ctx, unsettled, func(ctx context.Context, t *models.Tournament) error {
		return s.rewards.Settle(ctx, t)
	})
}

func (s *SweeperService) transition(ctx context.Context, t *models.Tournament, from, to models.TournamentStatus) error {
	claimed, err := s.tournamentRepo.TransitionStatus(ctx, nil, t.ID, from, to)
	if err != nil {
		return err
	}
	if !claimed {
		// Another sweep got there first.
		return nil
	}
	s.logger.Info("tournament status advanced",
		slog.String("category", LogCategorySystem),
		slog.String("tournament_id", t.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	s.notifier.NotifyStatusChanged(t.ID, to)
	return nil
}

// forEach processes tournaments with bounded parallelism, collecting
// per-tournament failures instead of aborting the batch.
func (s *SweeperService) forEach(ctx context.Context, tournaments []*models.Tournament, fn func(context.Context, *models.Tournament) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)

	errCh := make(chan error, len(tournaments))
	for _, t := range tournaments {
		g.Go(func() error {
			if err := fn(ctx, t); err != nil {
				s.logger.Error("sweep failed for tournament",
					slog.String("category", LogCategorySystem),
					slog.String("tournament_id", t.ID),
					slog.Any("error", err),
				)
				errCh <- err
			}
			// Per-tournament failures are collected, not returned, so
			// the group keeps processing the remaining tournaments.
			return nil
		})
	}
	_ = g.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
