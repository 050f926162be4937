package models

import "time"

// PayoutKind distinguishes prize credits from entry-fee refunds.
type PayoutKind string

const (
	PayoutKindPrize  PayoutKind = "prize"
	PayoutKindRefund PayoutKind = "refund"
)

// PayoutRecord is the durable proof that one participant was credited
// for one tournament. The (tournament_id, participant_id) uniqueness
// constraint is what makes reward distribution at-most-once.
type PayoutRecord struct {
	ID            string     `json:"id"`
	TournamentID  string     `json:"tournament_id"`
	ParticipantID string     `json:"participant_id"`
	Rank          int        `json:"rank"`
	Points        int64      `json:"points"`
	Kind          PayoutKind `json:"kind"`
	CreatedAt     time.Time  `json:"created_at"`
}
