package server

import (
	"mangaverse/application"
	"mangaverse/domain/entities"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type rateChapterRequest struct {
	ContentType string `json:"content_type"`
	ChapterID   string `json:"chapter_id"`
	UserID      string `json:"user_id"`
	Score       int    `json:"score"`
}

type ratingResponse struct {
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
}

func setupContentRoutes(app *fiber.App, handler application.RatingHandler) {
	app.Post("/content/rate", func(c *fiber.Ctx) error {
		var req rateChapterRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		chapterID, err := parseUUID(req.ChapterID, "chapter_id")
		if err != nil {
			return err
		}
		userID, err := parseUUID(req.UserID, "user_id")
		if err != nil {
			return err
		}

		summary, err := handler.RateChapter(c.UserContext(), entities.ContentType(req.ContentType), chapterID, userID, req.Score)
		if err != nil {
			return err
		}
		return c.JSON(ratingResponse{Average: summary.Average, Count: summary.Count})
	})
}
