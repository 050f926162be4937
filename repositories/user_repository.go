package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingoo-app/tournament-engine/models"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserInsufficientPoints = errors.New("user has insufficient points")
)

// UserRepository is the engine's handle on the shared platform point
// balance. All mutations go through conditional atomic increments so
// the balance can never be driven negative by a read-then-write race.
type UserRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error)
	// AdjustPoints applies delta (positive or negative) to the user's
	// balance. A debit that would take the balance below zero fails
	// with ErrUserInsufficientPoints and leaves the row untouched.
	AdjustPoints(ctx context.Context, exec SQLExecutor, id string, delta int64) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, display_name, points FROM users WHERE id = $1`

	u := &models.User{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.DisplayName, &u.Points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) AdjustPoints(ctx context.Context, exec SQLExecutor, id string, delta int64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET points = points + $1 WHERE id = $2 AND points + $1 >= 0`
	result, err := executor.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust points for user %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the user is gone or the debit would go negative.
		if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
			return getErr
		}
		return ErrUserInsufficientPoints
	}
	return nil
}
