package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
	"github.com/google/uuid"
)

// EntryService is the entry ledger: it validates and records a user's
// paid entry into a tournament. The participant insert and the entry
// fee debit happen in one transaction, so either both persist or
// neither does.
type EntryService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	logger          *slog.Logger
}

func NewEntryService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) *EntryService {
	return &EntryService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// Join registers the user for the tournament and debits the entry fee.
// Preconditions are checked in order: tournament exists, registration
// open, capacity left, not already joined, sufficient balance. The
// tournament row is locked for the duration of the transaction so
// concurrent joins serialize against the capacity check.
func (s *EntryService) Join(ctx context.Context, tournamentID, userID string) (*models.Participant, error) {
	participant := &models.Participant{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Score:        0,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
		}

		if tournament.Status != models.StatusRegistering {
			return ErrRegistrationClosed
		}

		count, err := s.participantRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count participants of %s: %w", tournamentID, err)
		}
		if count >= tournament.MaxPlayers {
			return ErrTournamentFull
		}

		if err := s.participantRepo.Create(ctx, exec, participant); err != nil {
			switch {
			case errors.Is(err, repositories.ErrParticipantConflict):
				return ErrAlreadyJoined
			case errors.Is(err, repositories.ErrParticipantUserInvalid):
				return ErrUserNotFound
			default:
				return fmt.Errorf("failed to create participant: %w", err)
			}
		}

		if tournament.EntryFee > 0 {
			if err := s.userRepo.AdjustPoints(ctx, exec, userID, -tournament.EntryFee); err != nil {
				switch {
				case errors.Is(err, repositories.ErrUserInsufficientPoints):
					return ErrInsufficientPoints
				case errors.Is(err, repositories.ErrUserNotFound):
					return ErrUserNotFound
				default:
					return fmt.Errorf("failed to debit entry fee: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("participant joined tournament",
		slog.String("category", LogCategoryGame),
		slog.String("tournament_id", tournamentID),
		slog.String("user_id", userID),
	)
	return participant, nil
}
