package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: user already joined this tournament")
	ErrParticipantUserInvalid       = errors.New("participant user conflict or invalid")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	FindByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.Participant, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
	// AddScore atomically increments the participant's score, but only
	// while the parent tournament is IN_PROGRESS. The status re-check
	// happens in the same statement so a sweep completing the
	// tournament can never race a late score past it.
	AddScore(ctx context.Context, tournamentID, userID string, delta int64) (int64, error)
	// ListRanked returns the tournament's participants with user
	// details, ordered by score descending, earlier join first, then id.
	ListRanked(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (id, tournament_id, user_id, score)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at`

	err := executor.QueryRowContext(ctx, query,
		p.ID,
		p.TournamentID,
		p.UserID,
		p.Score,
	).Scan(&p.JoinedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "participants_tournament_id_user_id_key" {
					return ErrParticipantConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "participants_tournament_id_fkey":
					return ErrParticipantTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) FindByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*models.Participant, error) {
	query := `
		SELECT id, tournament_id, user_id, score, joined_at
		FROM participants
		WHERE tournament_id = $1 AND user_id = $2`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, userID).Scan(
		&p.ID, &p.TournamentID, &p.UserID, &p.Score, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	query := `SELECT COUNT(*) FROM participants WHERE tournament_id = $1`
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) AddScore(ctx context.Context, tournamentID, userID string, delta int64) (int64, error) {
	query := `
		UPDATE participants p
		SET score = p.score + $3
		FROM tournaments t
		WHERE p.tournament_id = $1
		  AND p.user_id = $2
		  AND t.id = p.tournament_id
		  AND t.status = $4
		RETURNING p.score`

	var newScore int64
	err := r.db.QueryRowContext(ctx, query, tournamentID, userID, delta, models.StatusInProgress).Scan(&newScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrParticipantNotFound
		}
		return 0, fmt.Errorf("failed to add score: %w", err)
	}
	return newScore, nil
}

func (r *postgresParticipantRepository) ListRanked(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			p.id, p.tournament_id, p.user_id, p.score, p.joined_at,
			u.id, u.display_name, u.points
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.score DESC, p.joined_at ASC, p.id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var u models.User
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.UserID, &p.Score, &p.JoinedAt,
			&u.ID, &u.DisplayName, &u.Points,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		p.User = &u
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
