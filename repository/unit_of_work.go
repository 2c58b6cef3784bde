package repository

import (
	"context"
	"errors"
	"fmt"

	"mangaverse/application"
	"mangaverse/database"
	"mangaverse/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const notStarted = "unit of work not started - call Begin() first"

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	balanceRepo            interfaces.BalanceRepository
	balanceHistoryRepo     interfaces.BalanceHistoryRepository
	gameRepo               interfaces.GameRepository
	rewardEpochRepo        interfaces.RewardEpochRepository
	referralGrantRepo      interfaces.ReferralGrantRepository
	custodialWalletRepo    interfaces.CustodialWalletRepository
	airdropClaimRepo       interfaces.AirdropClaimRepository
	chapterRatingRepos     []interfaces.ChapterRatingRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory creates units of work backed by one pgx transaction each
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.accountRepo = newAccountRepository(tx)
	u.balanceRepo = newBalanceRepository(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepository(tx)
	u.gameRepo = newGameRepository(tx)
	u.rewardEpochRepo = newRewardEpochRepository(tx)
	u.referralGrantRepo = newReferralGrantRepository(tx)
	u.custodialWalletRepo = newCustodialWalletRepository(tx)
	u.airdropClaimRepo = newAirdropClaimRepository(tx)
	u.chapterRatingRepos = newChapterRatingRepositories(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		u.tx = nil
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return translateError(err, "commit transaction")
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic(notStarted)
	}
	return u.accountRepo
}

// BalanceRepository returns the balance repository for this unit of work
func (u *unitOfWork) BalanceRepository() interfaces.BalanceRepository {
	if u.balanceRepo == nil {
		panic(notStarted)
	}
	return u.balanceRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	if u.balanceHistoryRepo == nil {
		panic(notStarted)
	}
	return u.balanceHistoryRepo
}

// GameRepository returns the game repository for this unit of work
func (u *unitOfWork) GameRepository() interfaces.GameRepository {
	if u.gameRepo == nil {
		panic(notStarted)
	}
	return u.gameRepo
}

// RewardEpochRepository returns the reward epoch repository for this unit of work
func (u *unitOfWork) RewardEpochRepository() interfaces.RewardEpochRepository {
	if u.rewardEpochRepo == nil {
		panic(notStarted)
	}
	return u.rewardEpochRepo
}

// ReferralGrantRepository returns the referral grant repository for this unit of work
func (u *unitOfWork) ReferralGrantRepository() interfaces.ReferralGrantRepository {
	if u.referralGrantRepo == nil {
		panic(notStarted)
	}
	return u.referralGrantRepo
}

// CustodialWalletRepository returns the custodial wallet repository for this unit of work
func (u *unitOfWork) CustodialWalletRepository() interfaces.CustodialWalletRepository {
	if u.custodialWalletRepo == nil {
		panic(notStarted)
	}
	return u.custodialWalletRepo
}

// AirdropClaimRepository returns the airdrop claim repository for this unit of work
func (u *unitOfWork) AirdropClaimRepository() interfaces.AirdropClaimRepository {
	if u.airdropClaimRepo == nil {
		panic(notStarted)
	}
	return u.airdropClaimRepo
}

// ChapterRatingRepositories returns one rating repository per content type
func (u *unitOfWork) ChapterRatingRepositories() []interfaces.ChapterRatingRepository {
	if u.chapterRatingRepos == nil {
		panic(notStarted)
	}
	return u.chapterRatingRepos
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
