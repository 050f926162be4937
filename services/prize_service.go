package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
	"github.com/bingoo-app/tournament-engine/storage"
)

const prizeImageURLExpiry = 15 * time.Minute

// PrizeService reads the platform prize catalog and resolves stored
// image keys into presigned URLs.
type PrizeService struct {
	prizeRepo repositories.PrizeRepository
	images    storage.ImageResolver
	logger    *slog.Logger
}

func NewPrizeService(prizeRepo repositories.PrizeRepository, images storage.ImageResolver, logger *slog.Logger) *PrizeService {
	return &PrizeService{
		prizeRepo: prizeRepo,
		images:    images,
		logger:    logger,
	}
}

func (s *PrizeService) GetByID(ctx context.Context, id string) (*models.Prize, error) {
	prize, err := s.prizeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPrizeNotFound) {
			return nil, ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to get prize %s: %w", id, err)
	}

	if prize.ImageKey != nil && s.images != nil {
		url, err := s.images.ResolveURL(ctx, *prize.ImageKey, prizeImageURLExpiry)
		if err != nil {
			// The catalog entry is still useful without its picture.
			s.logger.Warn("failed to resolve prize image URL",
				slog.String("category", LogCategoryPrize),
				slog.String("prize_id", prize.ID),
				slog.Any("error", err),
			)
		} else {
			prize.ImageURL = &url
		}
	}
	return prize, nil
}
