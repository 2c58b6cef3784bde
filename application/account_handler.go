package application

import (
	"context"

	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/services"

	"github.com/google/uuid"
)

type accountHandler struct {
	tx       transactionRunner
	settings Settings
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(uowFactory UnitOfWorkFactory, settings Settings, observer TransactionObserver) AccountHandler {
	return &accountHandler{
		tx:       transactionRunner{uowFactory: uowFactory, observer: observer},
		settings: settings,
	}
}

func (h *accountHandler) service(uow UnitOfWork) interfaces.AccountService {
	return services.NewAccountService(
		uow.AccountRepository(),
		uow.ReferralGrantRepository(),
		uow.BalanceHistoryRepository(),
		newLedger(uow, h.settings),
		uow.EventBus(),
		h.settings.Account,
	)
}

// SignUp registers an account and settles its referral in one transaction
func (h *accountHandler) SignUp(ctx context.Context, walletAddress string, referralCode string) (*entities.Account, error) {
	var account *entities.Account
	err := h.tx.run(ctx, "sign_up", func(uow UnitOfWork) error {
		var err error
		account, err = h.service(uow).SignUp(ctx, walletAddress, referralCode)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GenerateReferralCode returns the account's referral code
func (h *accountHandler) GenerateReferralCode(ctx context.Context, walletAddress string) (string, error) {
	var code string
	err := h.tx.run(ctx, "generate_referral_code", func(uow UnitOfWork) error {
		var err error
		code, err = h.service(uow).GenerateReferralCode(ctx, walletAddress)
		return err
	})
	return code, err
}

// AwardPoints adds weekly points
func (h *accountHandler) AwardPoints(ctx context.Context, userID uuid.UUID, points int64) (int64, error) {
	var total int64
	err := h.tx.run(ctx, "award_points", func(uow UnitOfWork) error {
		var err error
		total, err = h.service(uow).AwardPoints(ctx, userID, points)
		return err
	})
	return total, err
}

// GetBalances lists balances
func (h *accountHandler) GetBalances(ctx context.Context, userID uuid.UUID) ([]*entities.Balance, error) {
	var balances []*entities.Balance
	err := h.tx.run(ctx, "get_balances", func(uow UnitOfWork) error {
		var err error
		balances, err = h.service(uow).GetBalances(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// GetHistory lists recent balance changes
func (h *accountHandler) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	var history []*entities.BalanceHistory
	err := h.tx.run(ctx, "get_history", func(uow UnitOfWork) error {
		var err error
		history, err = h.service(uow).GetHistory(ctx, userID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
