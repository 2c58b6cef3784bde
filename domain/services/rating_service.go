package services

import (
	"context"
	"fmt"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
)

// ratingService routes each rating to the repository registered for its
// content type
type ratingService struct {
	accountRepo interfaces.AccountRepository
	strategies  map[entities.ContentType]interfaces.ChapterRatingRepository
}

// NewRatingService creates a rating service with one strategy per content type.
// A later repository for the same content type replaces an earlier one.
func NewRatingService(accountRepo interfaces.AccountRepository, repos ...interfaces.ChapterRatingRepository) interfaces.RatingService {
	strategies := make(map[entities.ContentType]interfaces.ChapterRatingRepository, len(repos))
	for _, repo := range repos {
		strategies[repo.ContentType()] = repo
	}
	return &ratingService{
		accountRepo: accountRepo,
		strategies:  strategies,
	}
}

// RateChapter stores the score and refreshes the chapter aggregate
func (s *ratingService) RateChapter(ctx context.Context, contentType entities.ContentType, chapterID, userID uuid.UUID, score int) (*entities.RatingSummary, error) {
	strategy, ok := s.strategies[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidInput, contentType)
	}

	rating := &entities.ChapterRating{
		ContentType: contentType,
		ChapterID:   chapterID,
		UserID:      userID,
		Score:       score,
	}
	if !rating.ValidScore() {
		return nil, fmt.Errorf("%w: score must be between %d and %d", domain.ErrInvalidInput, entities.MinRatingScore, entities.MaxRatingScore)
	}

	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, userID)
	}

	exists, err := strategy.ChapterExists(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s chapter %s", domain.ErrNotFound, contentType, chapterID)
	}

	if err := strategy.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}

	summary, err := strategy.RefreshSummary(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh rating summary: %w", err)
	}
	return summary, nil
}
