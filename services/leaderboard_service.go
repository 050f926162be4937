package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
)

// LeaderboardService is the read-only ranked view of a tournament's
// participants. It uses exactly the ordering the reward distributor
// pays by (score descending, earlier join first, then participant id),
// so a displayed rank always matches the eventual payout rank.
type LeaderboardService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
}

func NewLeaderboardService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
) *LeaderboardService {
	return &LeaderboardService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
	}
}

// GetLeaderboard returns the current standings. Valid in any
// tournament state: before the start it lists zero-score entrants, and
// after completion it is the final ranking.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, tournamentID string) ([]models.LeaderboardEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}

	participants, err := s.participantRepo.ListRanked(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of %s: %w", tournamentID, err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(participants))
	for i, p := range participants {
		entry := models.LeaderboardEntry{
			Rank:   i + 1,
			UserID: p.UserID,
			Score:  p.Score,
		}
		if p.User != nil {
			entry.DisplayName = p.User.DisplayName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
