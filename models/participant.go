package models

import "time"

// Participant is a user's enrollment and running score within one
// tournament. One row per (tournament, user) pair.
type Participant struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	UserID       string    `json:"user_id"`
	Score        int64     `json:"score"`
	JoinedAt     time.Time `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
