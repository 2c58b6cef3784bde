package application

import (
	"context"

	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameHandler runs rock-paper-scissors operations in their own transactions
type GameHandler interface {
	CreateGame(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Game, error)
	JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*entities.Game, error)
	SubmitMove(ctx context.Context, gameID uuid.UUID, walletAddress string, move string) (*entities.MoveResult, error)
	GetGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error)
}

// RewardHandler triggers weekly distributions
type RewardHandler interface {
	// RunWeeklyDistribution splits pool, or the configured default pool when nil
	RunWeeklyDistribution(ctx context.Context, pool *decimal.Decimal) (*entities.DistributionResult, error)
}

// AccountHandler handles signup, referral codes, points and balance queries
type AccountHandler interface {
	SignUp(ctx context.Context, walletAddress string, referralCode string) (*entities.Account, error)
	GenerateReferralCode(ctx context.Context, walletAddress string) (string, error)
	AwardPoints(ctx context.Context, userID uuid.UUID, points int64) (int64, error)
	GetBalances(ctx context.Context, userID uuid.UUID) ([]*entities.Balance, error)
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error)
}

// AirdropHandler settles one-time treasury grants
type AirdropHandler interface {
	ClaimAirdrop(ctx context.Context, userID uuid.UUID) (*entities.AirdropResult, error)
}

// RatingHandler stores chapter ratings
type RatingHandler interface {
	RateChapter(ctx context.Context, contentType entities.ContentType, chapterID, userID uuid.UUID, score int) (*entities.RatingSummary, error)
}
