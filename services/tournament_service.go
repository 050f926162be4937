package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
	"github.com/google/uuid"
)

// TournamentService handles the administrative side of tournaments:
// creation, listing and cancellation. Lifecycle transitions driven by
// time belong to the sweeper, never to direct user action.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	rewards        *RewardService
	notifier       LiveNotifier
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	rewards *RewardService,
	notifier LiveNotifier,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		rewards:        rewards,
		notifier:       notifier,
		logger:         logger,
	}
}

type CreateTournamentInput struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	EntryFee    int64              `json:"entry_fee"`
	StartTime   string             `json:"start_time"` // RFC3339
	EndTime     string             `json:"end_time"`   // RFC3339
	MinPlayers  int                `json:"min_players"`
	MaxPlayers  int                `json:"max_players"`
	PrizeID     *string            `json:"prize_id"`
	Prizes      []models.PrizeTier `json:"prizes"`
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	tournament := &models.Tournament{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		EntryFee:    input.EntryFee,
		MinPlayers:  input.MinPlayers,
		MaxPlayers:  input.MaxPlayers,
		Status:      models.StatusRegistering,
		PrizeID:     input.PrizeID,
		Prizes:      input.Prizes,
	}

	if tournament.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if tournament.EntryFee < 0 {
		return nil, ErrTournamentInvalidEntryFee
	}
	if tournament.MinPlayers <= 0 || tournament.MinPlayers > tournament.MaxPlayers {
		return nil, ErrTournamentInvalidCapacity
	}
	if err := models.ValidatePrizeTiers(tournament.Prizes); err != nil {
		return nil, err
	}

	var err error
	tournament.StartTime, tournament.EndTime, err = parseTimeRange(input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidPrize) {
			return nil, ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.String("category", LogCategoryGame),
		slog.String("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
	)
	return tournament, nil
}

func (s *TournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return tournament, nil
}

func (s *TournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// Cancel moves a REGISTERING tournament to CANCELLED and refunds the
// entry fees. Participants are retained for audit. Tournaments that
// already started cannot be cancelled.
func (s *TournamentService) Cancel(ctx context.Context, id string) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusRegistering {
		return ErrTournamentNotCancellable
	}

	claimed, err := s.tournamentRepo.TransitionStatus(ctx, nil, id, models.StatusRegistering, models.StatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel tournament %s: %w", id, err)
	}
	if !claimed {
		// Lost the race against a sweep transition.
		return ErrTournamentNotCancellable
	}

	s.logger.Info("tournament cancelled",
		slog.String("category", LogCategoryGame),
		slog.String("tournament_id", id),
	)
	s.notifier.NotifyStatusChanged(id, models.StatusCancelled)

	tournament.Status = models.StatusCancelled
	// Refund immediately; if this fails the sweep retries settlement.
	if err := s.rewards.RefundEntries(ctx, tournament); err != nil {
		s.logger.Error("refunds incomplete after cancellation, sweep will retry",
			slog.String("category", LogCategoryPayment),
			slog.String("tournament_id", id),
			slog.Any("error", err),
		)
	}
	return nil
}
