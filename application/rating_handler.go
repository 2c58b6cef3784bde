package application

import (
	"context"

	"mangaverse/domain/entities"
	"mangaverse/domain/services"

	"github.com/google/uuid"
)

type ratingHandler struct {
	tx transactionRunner
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(uowFactory UnitOfWorkFactory, observer TransactionObserver) RatingHandler {
	return &ratingHandler{
		tx: transactionRunner{uowFactory: uowFactory, observer: observer},
	}
}

// RateChapter stores a rating and refreshes the chapter aggregate
func (h *ratingHandler) RateChapter(ctx context.Context, contentType entities.ContentType, chapterID, userID uuid.UUID, score int) (*entities.RatingSummary, error) {
	var summary *entities.RatingSummary
	err := h.tx.run(ctx, "rate_chapter", func(uow UnitOfWork) error {
		service := services.NewRatingService(uow.AccountRepository(), uow.ChapterRatingRepositories()...)
		var err error
		summary, err = service.RateChapter(ctx, contentType, chapterID, userID, score)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
