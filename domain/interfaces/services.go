package interfaces

import (
	"context"

	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceChange describes one ledger mutation and what caused it
type BalanceChange struct {
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	TransactionType entities.TransactionType
	RelatedID       string
	RelatedType     entities.RelatedType
	Metadata        map[string]any
}

// LedgerService applies balance changes with history and events
type LedgerService interface {
	// Credit increments the account's balance, creating it when absent
	Credit(ctx context.Context, change BalanceChange) (*entities.Balance, error)

	// Debit decrements the account's balance or fails with domain.ErrInsufficientFunds
	Debit(ctx context.Context, change BalanceChange) (*entities.Balance, error)

	// Covers reports whether the account can fund amount right now
	Covers(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, error)

	// Balances lists the account's balances
	Balances(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error)

	// ValidateAmount fails with domain.ErrInvalidInput unless amount is
	// positive and representable at the ledger's precision
	ValidateAmount(amount decimal.Decimal) error
}

// GameService defines rock-paper-scissors game operations
type GameService interface {
	// CreateGame opens a waiting game for walletAddress
	CreateGame(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Game, error)

	// JoinGame seats walletAddress as the second player
	JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*entities.Game, error)

	// SubmitMove records a move and settles the round when both moves are in
	SubmitMove(ctx context.Context, gameID uuid.UUID, walletAddress string, move string) (*entities.MoveResult, error)

	// GetGame returns a game by id
	GetGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error)
}

// RewardDistributionService defines the weekly reward split
type RewardDistributionService interface {
	// RunWeeklyDistribution splits pool across accounts by weekly points
	RunWeeklyDistribution(ctx context.Context, pool decimal.Decimal) (*entities.DistributionResult, error)
}

// AccountService defines signup, referral and points operations
type AccountService interface {
	// SignUp registers walletAddress, paying referral bonuses when referralCode resolves
	SignUp(ctx context.Context, walletAddress string, referralCode string) (*entities.Account, error)

	// GenerateReferralCode returns the account's code, issuing one if needed
	GenerateReferralCode(ctx context.Context, walletAddress string) (string, error)

	// AwardPoints adds weekly points to an account
	AwardPoints(ctx context.Context, userID uuid.UUID, points int64) (int64, error)

	// GetBalances lists an account's balances
	GetBalances(ctx context.Context, userID uuid.UUID) ([]*entities.Balance, error)

	// GetHistory lists an account's recent balance changes
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error)
}

// AirdropService holds the steps of an airdrop claim. Each step runs in its
// own unit of work so chain calls never hold a database transaction open.
type AirdropService interface {
	// ResolveWallet returns the user's custodial wallet, creating it once,
	// along with any existing claim
	ResolveWallet(ctx context.Context, userID uuid.UUID) (*entities.CustodialWallet, *entities.AirdropClaim, error)

	// CheckEligibility fails with domain.ErrAlreadyClaimed when the wallet already holds tokens
	CheckEligibility(ctx context.Context, walletAddress string) error

	// PrepareTransfer builds and signs the treasury transfer
	PrepareTransfer(ctx context.Context, walletAddress string) (*entities.SignedTransfer, error)

	// RecordPending stores the signed transfer before it is submitted
	RecordPending(ctx context.Context, userID uuid.UUID, transfer *entities.SignedTransfer) error

	// Submit sends the transfer and classifies the outcome
	Submit(ctx context.Context, transfer *entities.SignedTransfer) *entities.AirdropResult

	// ReconcileClaim looks up an unresolved claim's transfer on chain
	ReconcileClaim(ctx context.Context, claim *entities.AirdropClaim) (*entities.AirdropResult, error)

	// RecordOutcome stores the submission result
	RecordOutcome(ctx context.Context, userID uuid.UUID, result *entities.AirdropResult) error
}

// RatingService dispatches chapter ratings by content type
type RatingService interface {
	// RateChapter stores a user's score and returns the refreshed aggregate
	RateChapter(ctx context.Context, contentType entities.ContentType, chapterID, userID uuid.UUID, score int) (*entities.RatingSummary, error)
}
