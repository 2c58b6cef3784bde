package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"mangaverse/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRewardHandler struct {
	calls atomic.Int32
}

func (h *countingRewardHandler) RunWeeklyDistribution(ctx context.Context, pool *decimal.Decimal) (*entities.DistributionResult, error) {
	h.calls.Add(1)
	return &entities.DistributionResult{NextEligibleAt: time.Now().Add(time.Hour)}, nil
}

func TestWeeklyRewardWorker_TriggersDistribution(t *testing.T) {
	t.Parallel()

	handler := &countingRewardHandler{}
	worker, err := NewWeeklyRewardWorker(handler)
	require.NoError(t, err)

	stop, err := worker.Start(context.Background(), time.Hour)
	require.NoError(t, err)
	defer stop()

	assert.Eventually(t, func() bool {
		return handler.calls.Load() >= 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWeeklyRewardWorker_SkipsAfterCancel(t *testing.T) {
	t.Parallel()

	handler := &countingRewardHandler{}
	worker, err := NewWeeklyRewardWorker(handler)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worker.runOnce(ctx)

	assert.Equal(t, int32(0), handler.calls.Load())
}
