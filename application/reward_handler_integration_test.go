package application_test

import (
	"context"
	"sync"
	"testing"

	"mangaverse/application"
	"mangaverse/domain/entities"
	"mangaverse/domain/events"
	"mangaverse/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardHandler_SplitsPoolAndReportsDust(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := newTestUnitOfWorkFactory(testDB.DB)
	handler := application.NewRewardHandler(factory, testSettings(), nil)

	var accounts []*entities.Account
	for i := 0; i < 3; i++ {
		account := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
		testutil.SetWeeklyPoints(t, testDB.DB, account.ID, 10)
		accounts = append(accounts, account)
	}
	idle := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("idle"))

	pool := decimal.NewFromInt(100)
	result, err := handler.RunWeeklyDistribution(ctx, &pool)
	require.NoError(t, err)
	assert.True(t, result.Distributed)
	assert.Equal(t, 3, result.Recipients)
	assert.Equal(t, int64(30), result.TotalPoints)
	assert.True(t, result.TotalDistributed.Equal(decimal.RequireFromString("99.999999")), result.TotalDistributed.String())
	assert.True(t, result.Dust.Equal(decimal.RequireFromString("0.000001")), result.Dust.String())

	for _, account := range accounts {
		assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, account.ID).Equal(decimal.RequireFromString("33.333333")))
	}
	assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, idle.ID).IsZero())

	var remaining int64
	require.NoError(t, testDB.DB.QueryRow(ctx, `SELECT COALESCE(SUM(weekly_points), 0) FROM accounts`).Scan(&remaining))
	assert.Equal(t, int64(0), remaining)

	assert.Len(t, factory.flushedOfType(events.EventTypeRewardDistribution), 1)
	assert.Len(t, factory.flushedOfType(events.EventTypeBalanceChange), 3)

	// A second trigger inside the cooldown is a no-op
	second, err := handler.RunWeeklyDistribution(ctx, nil)
	require.NoError(t, err)
	assert.False(t, second.Distributed)
	assert.Equal(t, result.NextEligibleAt.Unix(), second.NextEligibleAt.Unix())
	for _, account := range accounts {
		assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, account.ID).Equal(decimal.RequireFromString("33.333333")))
	}
}

func TestRewardHandler_PoolTooSmallKeepsPoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := newTestUnitOfWorkFactory(testDB.DB)
	handler := application.NewRewardHandler(factory, testSettings(), nil)

	reader := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
	other := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
	testutil.SetWeeklyPoints(t, testDB.DB, reader.ID, 3)
	testutil.SetWeeklyPoints(t, testDB.DB, other.ID, 3)

	tiny := decimal.RequireFromString("0.000001")
	result, err := handler.RunWeeklyDistribution(ctx, &tiny)
	require.NoError(t, err)
	assert.False(t, result.Distributed)
	assert.True(t, result.Dust.Equal(tiny))

	var remaining int64
	require.NoError(t, testDB.DB.QueryRow(ctx, `SELECT COALESCE(SUM(weekly_points), 0) FROM accounts`).Scan(&remaining))
	assert.Equal(t, int64(6), remaining)
	assert.Empty(t, factory.flushedOfType(events.EventTypeRewardDistribution))

	// The epoch was not advanced, so a usable pool still pays out
	pool := decimal.NewFromInt(10)
	result, err = handler.RunWeeklyDistribution(ctx, &pool)
	require.NoError(t, err)
	assert.True(t, result.Distributed)
	assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, reader.ID).Equal(decimal.NewFromInt(5)))
	assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, other.ID).Equal(decimal.NewFromInt(5)))
}

func TestRewardHandler_EmptyPoolAdvancesEpoch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	handler := application.NewRewardHandler(newTestUnitOfWorkFactory(testDB.DB), testSettings(), nil)

	testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("idle"))

	result, err := handler.RunWeeklyDistribution(ctx, nil)
	require.NoError(t, err)
	assert.False(t, result.Distributed)
	assert.NotEmpty(t, result.Message)

	// The epoch moved, so points earned now wait for the next week
	account := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("late"))
	testutil.SetWeeklyPoints(t, testDB.DB, account.ID, 5)

	again, err := handler.RunWeeklyDistribution(ctx, nil)
	require.NoError(t, err)
	assert.False(t, again.Distributed)
	assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, account.ID).IsZero())
}

func TestRewardHandler_ConcurrentTriggersDistributeOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	t.Parallel()

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	handler := application.NewRewardHandler(newTestUnitOfWorkFactory(testDB.DB), testSettings(), nil)

	account := testutil.CreateTestAccount(t, testDB.DB, testutil.NewTestWallet("reader"))
	testutil.SetWeeklyPoints(t, testDB.DB, account.ID, 7)

	var wg sync.WaitGroup
	var mu sync.Mutex
	distributed := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := handler.RunWeeklyDistribution(ctx, nil)
			if !assert.NoError(t, err) {
				return
			}
			if result.Distributed {
				mu.Lock()
				distributed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, distributed)
	assert.True(t, testutil.GetBalanceAmount(t, testDB.DB, account.ID).Equal(testSettings().RewardPool))
}
