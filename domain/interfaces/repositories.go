package interfaces

import (
	"context"
	"time"

	"mangaverse/domain/entities"
	"mangaverse/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)

	// GetByWallet retrieves an account by wallet address
	GetByWallet(ctx context.Context, walletAddress string) (*entities.Account, error)

	// GetByReferralCode retrieves the account owning a referral code
	GetByReferralCode(ctx context.Context, code string) (*entities.Account, error)

	// Create inserts a new account. A duplicate wallet yields domain.ErrConflict.
	Create(ctx context.Context, walletAddress string, referredBy *uuid.UUID) (*entities.Account, error)

	// SetReferralCode assigns code only if the account has none yet and no
	// other account owns it. Returns false when nothing was updated.
	SetReferralCode(ctx context.Context, id uuid.UUID, code string) (bool, error)

	// AddWeeklyPoints atomically increments weekly points and returns the new total
	AddWeeklyPoints(ctx context.Context, id uuid.UUID, points int64) (int64, error)

	// GetWithWeeklyPointsForUpdate locks and returns every account with points > 0
	GetWithWeeklyPointsForUpdate(ctx context.Context) ([]*entities.Account, error)

	// ResetWeeklyPoints zeroes the weekly points of the given accounts
	ResetWeeklyPoints(ctx context.Context, ids []uuid.UUID) error
}

// BalanceRepository defines the interface for ledger balance access.
// Increment and Decrement are single-statement conditional updates, so no
// caller ever writes a balance it read earlier.
type BalanceRepository interface {
	// Get retrieves a balance, returning nil when it does not exist
	Get(ctx context.Context, key entities.BalanceKey) (*entities.Balance, error)

	// Increment adds amount, creating the balance with decimals when absent
	Increment(ctx context.Context, key entities.BalanceKey, decimals int32, amount decimal.Decimal) (*entities.Balance, error)

	// Decrement subtracts amount only if the balance covers it, otherwise
	// returns domain.ErrInsufficientFunds and changes nothing
	Decrement(ctx context.Context, key entities.BalanceKey, amount decimal.Decimal) (*entities.Balance, error)

	// ListByAccount returns every balance held by an account
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByAccount returns the most recent entries for an account
	GetByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*entities.BalanceHistory, error)
}

// GameRepository defines the interface for game state access
type GameRepository interface {
	// Create inserts a new game and populates its id and timestamps
	Create(ctx context.Context, game *entities.Game) error

	// GetByID retrieves a game without locking
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Game, error)

	// GetByIDForUpdate retrieves a game and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Game, error)

	// Update writes game state if its version is unchanged, bumping the
	// version. A stale version yields domain.ErrConflict.
	Update(ctx context.Context, game *entities.Game) error
}

// RewardEpochRepository defines the interface for the distribution epoch
type RewardEpochRepository interface {
	// GetForUpdate returns the singleton epoch row, locked
	GetForUpdate(ctx context.Context) (*entities.RewardEpoch, error)

	// UpdateLastDistribution stamps the epoch
	UpdateLastDistribution(ctx context.Context, at time.Time) error
}

// ReferralGrantRepository defines the interface for referral grant records
type ReferralGrantRepository interface {
	// Create inserts a grant. A second grant for the same invitee yields domain.ErrConflict.
	Create(ctx context.Context, grant *entities.ReferralGrant) error

	// GetByInvitee returns the grant paid for an invitee, or nil
	GetByInvitee(ctx context.Context, inviteeID uuid.UUID) (*entities.ReferralGrant, error)
}

// CustodialWalletRepository defines the interface for custodial wallet records
type CustodialWalletRepository interface {
	// InsertIfAbsent stores wallet unless the user already has one and
	// returns whichever record is persisted
	InsertIfAbsent(ctx context.Context, wallet *entities.CustodialWallet) (*entities.CustodialWallet, error)

	// GetByUser returns the user's wallet, or nil
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.CustodialWallet, error)
}

// AirdropClaimRepository defines the interface for airdrop claim records
type AirdropClaimRepository interface {
	// GetByUser returns the user's claim, or nil
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.AirdropClaim, error)

	// CreatePending records a claim about to be submitted. It replaces a
	// failed claim but yields domain.ErrConflict for any other existing claim.
	CreatePending(ctx context.Context, claim *entities.AirdropClaim) error

	// UpdateOutcome stores the result of submission
	UpdateOutcome(ctx context.Context, userID uuid.UUID, status entities.AirdropStatus, signature *string, errMsg *string) error
}

// ChapterRatingRepository stores ratings for one content type
type ChapterRatingRepository interface {
	// ContentType returns the content type this repository serves
	ContentType() entities.ContentType

	// ChapterExists reports whether the chapter is known
	ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error)

	// Upsert stores or replaces a user's rating
	Upsert(ctx context.Context, rating *entities.ChapterRating) error

	// RefreshSummary recomputes and stores the chapter's rating aggregate
	RefreshSummary(ctx context.Context, chapterID uuid.UUID) (*entities.RatingSummary, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding
// transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every buffered event
	Flush(ctx context.Context) error

	// Discard drops every buffered event
	Discard()
}
