package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
)

// LiveNotifier pushes tournament events to connected leaderboard
// viewers. Implemented by live.Hub; a no-op implementation is fine for
// deployments without websockets.
type LiveNotifier interface {
	NotifyScoreUpdated(tournamentID, userID string, score int64)
	NotifyStatusChanged(tournamentID string, status models.TournamentStatus)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) NotifyScoreUpdated(string, string, int64) {}

func (NopNotifier) NotifyStatusChanged(string, models.TournamentStatus) {}

// ScoreService applies incremental score updates to participants of an
// active tournament. It is called by the platform's game-completion
// logic, not by end users; game-specific scoring rules are the
// caller's responsibility.
type ScoreService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	notifier        LiveNotifier
	logger          *slog.Logger
}

func NewScoreService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	notifier LiveNotifier,
	logger *slog.Logger,
) *ScoreService {
	return &ScoreService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// AddScore increments the participant's score. The increment and the
// IN_PROGRESS status check run in a single UPDATE, so a score arriving
// after the sweep completed the tournament is rejected, and concurrent
// updates to the same participant never lose points.
func (s *ScoreService) AddScore(ctx context.Context, tournamentID, userID string, points int64) (int64, error) {
	newScore, err := s.participantRepo.AddScore(ctx, tournamentID, userID, points)
	if err == nil {
		s.notifier.NotifyScoreUpdated(tournamentID, userID, newScore)
		return newScore, nil
	}
	if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return 0, fmt.Errorf("failed to add score: %w", err)
	}

	// Zero rows updated: figure out which precondition failed.
	tournament, getErr := s.tournamentRepo.GetByID(ctx, tournamentID)
	if getErr != nil {
		if errors.Is(getErr, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to load tournament %s: %w", tournamentID, getErr)
	}
	if tournament.Status != models.StatusInProgress {
		return 0, ErrTournamentNotActive
	}
	if _, findErr := s.participantRepo.FindByTournamentAndUser(ctx, tournamentID, userID); findErr != nil {
		if errors.Is(findErr, repositories.ErrParticipantNotFound) {
			return 0, ErrParticipantNotFound
		}
		return 0, fmt.Errorf("failed to find participant: %w", findErr)
	}
	// Status flipped between the UPDATE and the re-read; treat the
	// original rejection as authoritative.
	return 0, ErrTournamentNotActive
}
