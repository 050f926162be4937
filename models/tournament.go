package models

import (
	"errors"
	"time"
)

// TournamentStatus represents the lifecycle states, matching the ENUM in the DB.
type TournamentStatus string

const (
	StatusRegistering TournamentStatus = "REGISTERING"
	StatusInProgress  TournamentStatus = "IN_PROGRESS"
	StatusCompleted   TournamentStatus = "COMPLETED"
	StatusCancelled   TournamentStatus = "CANCELLED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusRegistering, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s TournamentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var (
	ErrPrizeTierInvalidRank   = errors.New("prize tier rank must be positive")
	ErrPrizeTierInvalidValue  = errors.New("prize tier points must be non-negative")
	ErrPrizeTierDuplicateRank = errors.New("prize tier ranks must be unique")
)

// PrizeTier is one payout slot of a tournament: the participant holding
// Rank after completion is credited Points.
type PrizeTier struct {
	Rank   int   `json:"rank"`
	Points int64 `json:"points"`
}

// ValidatePrizeTiers checks that every tier has a positive rank, a
// non-negative amount, and that no rank appears twice.
func ValidatePrizeTiers(tiers []PrizeTier) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.Rank <= 0 {
			return ErrPrizeTierInvalidRank
		}
		if tier.Points < 0 {
			return ErrPrizeTierInvalidValue
		}
		if _, ok := seen[tier.Rank]; ok {
			return ErrPrizeTierDuplicateRank
		}
		seen[tier.Rank] = struct{}{}
	}
	return nil
}

// Tournament represents a point-based tournament.
type Tournament struct {
	ID                string           `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       *string          `json:"description,omitempty" db:"description"`
	EntryFee          int64            `json:"entry_fee" db:"entry_fee"`
	StartTime         time.Time        `json:"start_time" db:"start_time"`
	EndTime           time.Time        `json:"end_time" db:"end_time"`
	MinPlayers        int              `json:"min_players" db:"min_players"`
	MaxPlayers        int              `json:"max_players" db:"max_players"`
	Status            TournamentStatus `json:"status" db:"status"`
	PrizeID           *string          `json:"prize_id,omitempty" db:"prize_id"`
	Prizes            []PrizeTier      `json:"prizes" db:"prizes"`
	PayoutCompletedAt *time.Time       `json:"payout_completed_at,omitempty" db:"payout_completed_at"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`

	// Optional related entities (not mapped directly).
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
