package application

import (
	"context"

	"mangaverse/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	BalanceRepository() interfaces.BalanceRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	GameRepository() interfaces.GameRepository
	RewardEpochRepository() interfaces.RewardEpochRepository
	ReferralGrantRepository() interfaces.ReferralGrantRepository
	CustodialWalletRepository() interfaces.CustodialWalletRepository
	AirdropClaimRepository() interfaces.AirdropClaimRepository
	ChapterRatingRepositories() []interfaces.ChapterRatingRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
