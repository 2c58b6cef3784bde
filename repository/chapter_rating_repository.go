package repository

import (
	"context"
	"fmt"

	"mangaverse/database"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
)

// ChapterRatingRepository stores ratings for one content type. Each content
// type owns a chapter table and a rating table with identical shapes.
type ChapterRatingRepository struct {
	q            Queryable
	contentType  entities.ContentType
	chapterTable string
	ratingTable  string
}

func chapterTables(contentType entities.ContentType) (chapters, ratings string, err error) {
	switch contentType {
	case entities.ContentTypeManga:
		return "manga_chapters", "manga_chapter_ratings", nil
	case entities.ContentTypeNovel:
		return "novel_chapters", "novel_chapter_ratings", nil
	}
	return "", "", fmt.Errorf("unsupported content type %q", contentType)
}

// NewChapterRatingRepository creates a rating repository for a content type
func NewChapterRatingRepository(db *database.DB, contentType entities.ContentType) (*ChapterRatingRepository, error) {
	return newChapterRatingRepository(db.Pool, contentType)
}

func newChapterRatingRepository(q Queryable, contentType entities.ContentType) (*ChapterRatingRepository, error) {
	chapters, ratings, err := chapterTables(contentType)
	if err != nil {
		return nil, err
	}
	return &ChapterRatingRepository{
		q:            q,
		contentType:  contentType,
		chapterTable: chapters,
		ratingTable:  ratings,
	}, nil
}

func newChapterRatingRepositories(q Queryable) []interfaces.ChapterRatingRepository {
	repos := make([]interfaces.ChapterRatingRepository, 0, 2)
	for _, contentType := range []entities.ContentType{entities.ContentTypeManga, entities.ContentTypeNovel} {
		repo, _ := newChapterRatingRepository(q, contentType)
		repos = append(repos, repo)
	}
	return repos
}

// ContentType returns the content type served by this repository
func (r *ChapterRatingRepository) ContentType() entities.ContentType {
	return r.contentType
}

// ChapterExists reports whether the chapter row exists
func (r *ChapterRatingRepository) ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ` + r.chapterTable + ` WHERE id = $1)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, chapterID).Scan(&exists); err != nil {
		return false, translateError(err, "check chapter")
	}
	return exists, nil
}

// Upsert stores the user's score, replacing an earlier one
func (r *ChapterRatingRepository) Upsert(ctx context.Context, rating *entities.ChapterRating) error {
	query := `
		INSERT INTO ` + r.ratingTable + ` (chapter_id, user_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (chapter_id, user_id) DO UPDATE
		SET score = EXCLUDED.score, updated_at = NOW()
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, rating.ChapterID, rating.UserID, rating.Score).Scan(&rating.UpdatedAt)
	if err != nil {
		return translateError(err, "upsert "+string(r.contentType)+" rating")
	}
	return nil
}

// RefreshSummary recomputes the chapter average from all ratings. The chapter
// row is locked first so the aggregate runs on a snapshot that includes every
// rating committed by earlier lock holders.
func (r *ChapterRatingRepository) RefreshSummary(ctx context.Context, chapterID uuid.UUID) (*entities.RatingSummary, error) {
	if _, err := r.q.Exec(ctx, `SELECT id FROM `+r.chapterTable+` WHERE id = $1 FOR UPDATE`, chapterID); err != nil {
		return nil, translateError(err, "lock "+string(r.contentType)+" chapter")
	}

	query := `
		UPDATE ` + r.chapterTable + ` c
		SET rating_average = s.average, rating_count = s.total
		FROM (
			SELECT COALESCE(ROUND(AVG(score)::numeric, 2), 0) AS average, COUNT(*)::int AS total
			FROM ` + r.ratingTable + `
			WHERE chapter_id = $1
		) s
		WHERE c.id = $1
		RETURNING c.rating_average::text, c.rating_count
	`
	var average string
	summary := &entities.RatingSummary{ContentType: r.contentType, ChapterID: chapterID}
	if err := r.q.QueryRow(ctx, query, chapterID).Scan(&average, &summary.Count); err != nil {
		return nil, translateError(err, "refresh "+string(r.contentType)+" rating summary")
	}
	var err error
	if summary.Average, err = parseDecimal(average, "rating_average"); err != nil {
		return nil, err
	}
	return summary, nil
}
