package application_test

import (
	"context"
	"errors"
	"testing"

	"mangaverse/application"
	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/repository/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingHandler_RateChapter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	handler := application.NewRatingHandler(newTestUnitOfWorkFactory(testDB.DB), nil)

	reader := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
	critic := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("critic"))
	mangaChapter := testutil.CreateTestChapter(t, testDB.DB, entities.ContentTypeManga, "Chapter 1")
	novelChapter := testutil.CreateTestChapter(t, testDB.DB, entities.ContentTypeNovel, "Prologue")

	summary, err := handler.RateChapter(ctx, entities.ContentTypeManga, mangaChapter, reader.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.True(t, summary.Average.Equal(decimal.NewFromInt(5)))

	summary, err = handler.RateChapter(ctx, entities.ContentTypeManga, mangaChapter, critic.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.True(t, summary.Average.Equal(decimal.RequireFromString("3.5")), summary.Average.String())

	// Re-rating replaces the earlier score
	summary, err = handler.RateChapter(ctx, entities.ContentTypeManga, mangaChapter, critic.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.True(t, summary.Average.Equal(decimal.NewFromInt(4)), summary.Average.String())

	// Each content type keeps its own ratings
	summary, err = handler.RateChapter(ctx, entities.ContentTypeNovel, novelChapter, reader.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.ContentTypeNovel, summary.ContentType)
	assert.Equal(t, 1, summary.Count)

	_, err = handler.RateChapter(ctx, entities.ContentTypeNovel, mangaChapter, reader.ID, 4)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRatingHandler_Rejections(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	handler := application.NewRatingHandler(newTestUnitOfWorkFactory(testDB.DB), nil)

	reader := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
	chapter := testutil.CreateTestChapter(t, testDB.DB, entities.ContentTypeManga, "Chapter 1")

	tests := []struct {
		name        string
		contentType entities.ContentType
		chapterID   uuid.UUID
		userID      uuid.UUID
		score       int
		want        error
	}{
		{"unknown content type", entities.ContentType("comic"), chapter, reader.ID, 3, domain.ErrInvalidInput},
		{"score too low", entities.ContentTypeManga, chapter, reader.ID, 0, domain.ErrInvalidInput},
		{"score too high", entities.ContentTypeManga, chapter, reader.ID, 6, domain.ErrInvalidInput},
		{"unknown user", entities.ContentTypeManga, chapter, uuid.New(), 3, domain.ErrNotFound},
		{"unknown chapter", entities.ContentTypeManga, uuid.New(), reader.ID, 3, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.RateChapter(ctx, tt.contentType, tt.chapterID, tt.userID, tt.score)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
