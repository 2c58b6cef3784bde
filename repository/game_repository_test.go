package repository

import (
	"context"
	"testing"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/repository/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	game := &entities.Game{
		PlayerOne:   "wallet-one",
		StakeAmount: decimal.RequireFromString("2.5"),
		Status:      entities.GameStatusWaiting,
	}
	require.NoError(t, repo.Create(ctx, game))
	assert.NotEqual(t, uuid.Nil, game.ID)
	assert.Equal(t, 1, game.Round)
	assert.Equal(t, int64(1), game.Version)

	found, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "wallet-one", found.PlayerOne)
	assert.Nil(t, found.PlayerTwo)
	assert.Nil(t, found.PlayerOneMove)
	assert.True(t, found.StakeAmount.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, entities.GameStatusWaiting, found.Status)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGameRepository_Update(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateTestOngoingGame("wallet-a", "wallet-b", decimal.NewFromInt(5))
	require.NoError(t, repo.Create(ctx, game))

	stale := *game

	require.NoError(t, game.SetMove("wallet-a", entities.MoveRock))
	require.NoError(t, game.SetMove("wallet-b", entities.MoveScissors))
	game.Complete("wallet-a", time.Now())
	require.NoError(t, repo.Update(ctx, game))
	assert.Equal(t, int64(2), game.Version)

	stored, err := repo.GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.GameStatusCompleted, stored.Status)
	require.NotNil(t, stored.Winner)
	assert.Equal(t, "wallet-a", *stored.Winner)
	require.NotNil(t, stored.PlayerTwoMove)
	assert.Equal(t, entities.MoveScissors, *stored.PlayerTwoMove)
	assert.NotNil(t, stored.CompletedAt)

	t.Run("stale version is a conflict", func(t *testing.T) {
		stale.ResetRound()
		err := repo.Update(ctx, &stale)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestGameRepository_GetByIDForUpdateBlocks(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	game := testutil.CreateTestOngoingGame("wallet-x", "wallet-y", decimal.NewFromInt(1))
	require.NoError(t, NewGameRepository(testDB.DB).Create(ctx, game))

	holder, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	locked, err := newGameRepository(holder).GetByIDForUpdate(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	waiter, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer waiter.Rollback(ctx)

	_, err = waiter.Exec(ctx, "SET LOCAL lock_timeout = '200ms'")
	require.NoError(t, err)
	_, err = newGameRepository(waiter).GetByIDForUpdate(ctx, game.ID)
	assert.Error(t, err)

	require.NoError(t, holder.Rollback(ctx))
}
