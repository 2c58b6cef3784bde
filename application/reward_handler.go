package application

import (
	"context"

	"mangaverse/domain/entities"
	"mangaverse/domain/services"

	"github.com/shopspring/decimal"
)

type rewardHandler struct {
	tx       transactionRunner
	settings Settings
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(uowFactory UnitOfWorkFactory, settings Settings, observer TransactionObserver) RewardHandler {
	return &rewardHandler{
		tx:       transactionRunner{uowFactory: uowFactory, observer: observer},
		settings: settings,
	}
}

// RunWeeklyDistribution runs one self-gated distribution in a single transaction
func (h *rewardHandler) RunWeeklyDistribution(ctx context.Context, pool *decimal.Decimal) (*entities.DistributionResult, error) {
	amount := h.settings.RewardPool
	if pool != nil {
		amount = *pool
	}

	var result *entities.DistributionResult
	err := h.tx.run(ctx, "weekly_distribution", func(uow UnitOfWork) error {
		service := services.NewRewardDistributionService(
			uow.AccountRepository(),
			uow.RewardEpochRepository(),
			newLedger(uow, h.settings),
			uow.EventBus(),
			h.settings.Reward,
		)
		var err error
		result, err = service.RunWeeklyDistribution(ctx, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
