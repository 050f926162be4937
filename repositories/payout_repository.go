package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingoo-app/tournament-engine/models"
)

type PayoutRepository interface {
	// Insert records a payout for one participant of one tournament.
	// The table carries a unique constraint on
	// (tournament_id, participant_id); when a record already exists the
	// insert is a no-op and Insert reports false. This is the
	// at-most-once guard for reward distribution.
	Insert(ctx context.Context, exec SQLExecutor, rec *models.PayoutRecord) (bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.PayoutRecord, error)
}

type postgresPayoutRepository struct {
	db *sql.DB
}

func NewPostgresPayoutRepository(db *sql.DB) PayoutRepository {
	return &postgresPayoutRepository{db: db}
}

func (r *postgresPayoutRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPayoutRepository) Insert(ctx context.Context, exec SQLExecutor, rec *models.PayoutRecord) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_payouts (id, tournament_id, participant_id, rank, points, kind)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tournament_id, participant_id) DO NOTHING
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		rec.ID, rec.TournamentID, rec.ParticipantID, rec.Rank, rec.Points, rec.Kind,
	).Scan(&rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict path: this participant was already paid.
			return false, nil
		}
		return false, fmt.Errorf("failed to insert payout record: %w", err)
	}
	return true, nil
}

func (r *postgresPayoutRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.PayoutRecord, error) {
	query := `
		SELECT id, tournament_id, participant_id, rank, points, kind, created_at
		FROM tournament_payouts
		WHERE tournament_id = $1
		ORDER BY rank ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	records := make([]*models.PayoutRecord, 0)
	for rows.Next() {
		var rec models.PayoutRecord
		if err := rows.Scan(
			&rec.ID, &rec.TournamentID, &rec.ParticipantID, &rec.Rank, &rec.Points, &rec.Kind, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payout row: %w", err)
		}
		records = append(records, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payout rows: %w", err)
	}
	return records, nil
}
