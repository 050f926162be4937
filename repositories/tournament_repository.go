package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentInvalidPrize = errors.New("invalid prize reference")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// TransitionStatus atomically moves a tournament from one status to
	// another. It reports false when the row was not in the expected
	// status anymore, which is how overlapping sweeps stay idempotent.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.TournamentStatus) (bool, error)
	// MarkPayoutCompleted stamps the payout idempotency marker. False
	// means another invocation already stamped it.
	MarkPayoutCompleted(ctx context.Context, exec SQLExecutor, id string, at time.Time) (bool, error)
	ListDueForStart(ctx context.Context, now time.Time) ([]*models.Tournament, error)
	ListDueForCompletion(ctx context.Context, now time.Time) ([]*models.Tournament, error)
	// ListUnsettled returns terminal tournaments whose payouts (prize
	// credits for COMPLETED, entry-fee refunds for CANCELLED) have not
	// been stamped as finished yet.
	ListUnsettled(ctx context.Context) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, entry_fee, start_time, end_time,
	min_players, max_players, status, prize_id, prizes, payout_completed_at, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	prizesJSON, err := json.Marshal(t.Prizes)
	if err != nil {
		return fmt.Errorf("failed to encode prize tiers: %w", err)
	}

	query := `
		INSERT INTO tournaments (
			id, name, description, entry_fee, start_time, end_time,
			min_players, max_players, status, prize_id, prizes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.EntryFee, t.StartTime, t.EndTime,
		t.MinPlayers, t.MaxPlayers, t.Status, t.PrizeID, prizesJSON,
	).Scan(&t.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "tournaments_prize_id_fkey" {
			return ErrTournamentInvalidPrize
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) scanTournament(row interface {
	Scan(dest ...interface{}) error
}) (*models.Tournament, error) {
	t := &models.Tournament{}
	var prizesJSON []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.EntryFee, &t.StartTime, &t.EndTime,
		&t.MinPlayers, &t.MaxPlayers, &t.Status, &t.PrizeID, &prizesJSON,
		&t.PayoutCompletedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	if len(prizesJSON) > 0 {
		if err := json.Unmarshal(prizesJSON, &t.Prizes); err != nil {
			return nil, fmt.Errorf("failed to decode prize tiers for tournament %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the tournament row for the rest of the
// transaction. The entry ledger relies on this to serialize concurrent
// joins against the capacity check.
func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_time DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id string, from, to models.TournamentStatus) (bool, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition tournament %s to %s: %w", id, to, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresTournamentRepository) MarkPayoutCompleted(ctx context.Context, exec SQLExecutor, id string, at time.Time) (bool, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET payout_completed_at = $1 WHERE id = $2 AND payout_completed_at IS NULL`
	result, err := executor.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark payout completed for tournament %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresTournamentRepository) listWhere(ctx context.Context, condition string, args ...interface{}) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE ` + condition + ` ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListDueForStart(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	return r.listWhere(ctx, `status = $1 AND start_time <= $2`, models.StatusRegistering, now)
}

func (r *postgresTournamentRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	return r.listWhere(ctx, `status = $1 AND end_time <= $2`, models.StatusInProgress, now)
}

func (r *postgresTournamentRepository) ListUnsettled(ctx context.Context) ([]*models.Tournament, error) {
	return r.listWhere(ctx, `status IN ($1, $2) AND payout_completed_at IS NULL`,
		models.StatusCompleted, models.StatusCancelled)
}
