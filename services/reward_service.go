package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
	"github.com/google/uuid"
)

// RewardService settles terminal tournaments: prize credits for
// completed ones and entry-fee refunds for cancelled ones.
//
// Every credit is guarded by a payout record with a
// (tournament, participant) uniqueness constraint, inserted in the same
// transaction as the balance adjustment. Re-running a distribution
// therefore skips participants that were already settled, and the
// tournament-level payout_completed_at marker is stamped only once all
// of them are. Partial failures leave the marker unset so the next
// sweep retries the remaining participants only.
type RewardService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	payoutRepo      repositories.PayoutRepository
	logger          *slog.Logger
	now             func() time.Time
}

func NewRewardService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	payoutRepo repositories.PayoutRepository,
	logger *slog.Logger,
) *RewardService {
	return &RewardService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		payoutRepo:      payoutRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Settle runs the appropriate settlement for a terminal tournament.
func (s *RewardService) Settle(ctx context.Context, tournament *models.Tournament) error {
	switch tournament.Status {
	case models.StatusCompleted:
		return s.DistributePrizes(ctx, tournament)
	case models.StatusCancelled:
		return s.RefundEntries(ctx, tournament)
	default:
		return fmt.Errorf("tournament %s is not terminal (status %s)", tournament.ID, tournament.Status)
	}
}

// DistributePrizes ranks the participants and credits each configured
// prize tier that has an occupant. Tiers beyond the participant count
// are simply not paid.
func (s *RewardService) DistributePrizes(ctx context.Context, tournament *models.Tournament) error {
	if tournament.PayoutCompletedAt != nil {
		return nil
	}

	participants, err := s.participantRepo.ListRanked(ctx, nil, tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to rank participants of %s: %w", tournament.ID, err)
	}

	tierByRank := make(map[int]models.PrizeTier, len(tournament.Prizes))
	for _, tier := range tournament.Prizes {
		tierByRank[tier.Rank] = tier
	}

	var errs []error
	for i, participant := range participants {
		rank := i + 1
		tier, ok := tierByRank[rank]
		if !ok {
			continue
		}
		if err := s.creditOnce(ctx, tournament.ID, participant, rank, tier.Points, models.PayoutKindPrize); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return s.markSettled(ctx, tournament.ID)
}

// RefundEntries returns the entry fee to every participant of a
// cancelled tournament. Participant rows are retained for audit.
func (s *RewardService) RefundEntries(ctx context.Context, tournament *models.Tournament) error {
	if tournament.PayoutCompletedAt != nil {
		return nil
	}

	if tournament.EntryFee > 0 {
		participants, err := s.participantRepo.ListRanked(ctx, nil, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants of %s: %w", tournament.ID, err)
		}

		var errs []error
		for _, participant := range participants {
			if err := s.creditOnce(ctx, tournament.ID, participant, 0, tournament.EntryFee, models.PayoutKindRefund); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
	}

	return s.markSettled(ctx, tournament.ID)
}

// creditOnce inserts the payout record and adjusts the balance in one
// transaction. A conflicting record means this participant was settled
// by an earlier or concurrent invocation, so nothing is credited.
func (s *RewardService) creditOnce(ctx context.Context, tournamentID string, participant *models.Participant, rank int, points int64, kind models.PayoutKind) error {
	rec := &models.PayoutRecord{
		ID:            uuid.NewString(),
		TournamentID:  tournamentID,
		ParticipantID: participant.ID,
		Rank:          rank,
		Points:        points,
		Kind:          kind,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		inserted, err := s.payoutRepo.Insert(ctx, exec, rec)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		if points > 0 {
			if err := s.userRepo.AdjustPoints(ctx, exec, participant.UserID, points); err != nil {
				return fmt.Errorf("failed to credit user %s: %w", participant.UserID, err)
			}
		}
		s.logger.Info("participant credited",
			slog.String("category", LogCategoryPayment),
			slog.String("tournament_id", tournamentID),
			slog.String("user_id", participant.UserID),
			slog.Int("rank", rank),
			slog.Int64("points", points),
			slog.String("kind", string(kind)),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("payout for participant %s of tournament %s: %w", participant.ID, tournamentID, err)
	}
	return nil
}

// ListPayouts returns the audit trail of credits for one tournament.
func (s *RewardService) ListPayouts(ctx context.Context, tournamentID string) ([]*models.PayoutRecord, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
	}
	records, err := s.payoutRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts of %s: %w", tournamentID, err)
	}
	return records, nil
}

func (s *RewardService) markSettled(ctx context.Context, tournamentID string) error {
	stamped, err := s.tournamentRepo.MarkPayoutCompleted(ctx, nil, tournamentID, s.now())
	if err != nil {
		return fmt.Errorf("failed to mark payout completed for %s: %w", tournamentID, err)
	}
	if stamped {
		s.logger.Info("tournament settled",
			slog.String("category", LogCategoryPrize),
			slog.String("tournament_id", tournamentID),
		)
	}
	return nil
}
