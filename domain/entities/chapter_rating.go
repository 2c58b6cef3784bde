package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContentType selects the chapter family a rating belongs to
type ContentType string

const (
	ContentTypeManga ContentType = "manga"
	ContentTypeNovel ContentType = "novel"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// ChapterRating is one user's score for one chapter
type ChapterRating struct {
	ContentType ContentType `db:"-"`
	ChapterID   uuid.UUID   `db:"chapter_id"`
	UserID      uuid.UUID   `db:"user_id"`
	Score       int         `db:"score"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// ValidScore reports whether the score lies within the rating scale
func (r *ChapterRating) ValidScore() bool {
	return r.Score >= MinRatingScore && r.Score <= MaxRatingScore
}

// RatingSummary is the aggregate stored on the chapter row
type RatingSummary struct {
	ContentType ContentType     `json:"content_type"`
	ChapterID   uuid.UUID       `json:"chapter_id"`
	Average     decimal.Decimal `json:"average"`
	Count       int             `json:"count"`
}
