package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bingoo-app/tournament-engine/models"
)

var ErrPrizeNotFound = errors.New("prize not found")

// PrizeRepository reads the platform's prize catalog. The catalog is
// owned and written by the main platform; the engine never mutates it.
type PrizeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Prize, error)
}

type postgresPrizeRepository struct {
	db *sql.DB
}

func NewPostgresPrizeRepository(db *sql.DB) PrizeRepository {
	return &postgresPrizeRepository{db: db}
}

func (r *postgresPrizeRepository) GetByID(ctx context.Context, id string) (*models.Prize, error) {
	query := `
		SELECT id, name, description, points_cost, stock, image_key, created_at
		FROM prizes
		WHERE id = $1`

	p := &models.Prize{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PointsCost, &p.Stock, &p.ImageKey, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to get prize: %w", err)
	}
	return p, nil
}
