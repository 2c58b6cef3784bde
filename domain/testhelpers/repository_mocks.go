package testhelpers

import (
	"context"
	"time"

	"mangaverse/domain/entities"
	"mangaverse/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByWallet(ctx context.Context, walletAddress string) (*entities.Account, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, walletAddress string, referredBy *uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, walletAddress, referredBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) SetReferralCode(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, id, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) AddWeeklyPoints(ctx context.Context, id uuid.UUID, points int64) (int64, error) {
	args := m.Called(ctx, id, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) GetWithWeeklyPointsForUpdate(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) ResetWeeklyPoints(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Get(ctx context.Context, key entities.BalanceKey) (*entities.Balance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Increment(ctx context.Context, key entities.BalanceKey, decimals int32, amount decimal.Decimal) (*entities.Balance, error) {
	args := m.Called(ctx, key, decimals, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Decrement(ctx context.Context, key entities.BalanceKey, amount decimal.Decimal) (*entities.Balance, error) {
	args := m.Called(ctx, key, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Balance), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *entities.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *MockGameRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *MockGameRepository) Update(ctx context.Context, game *entities.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

// MockRewardEpochRepository is a mock implementation of RewardEpochRepository
type MockRewardEpochRepository struct {
	mock.Mock
}

func (m *MockRewardEpochRepository) GetForUpdate(ctx context.Context) (*entities.RewardEpoch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RewardEpoch), args.Error(1)
}

func (m *MockRewardEpochRepository) UpdateLastDistribution(ctx context.Context, at time.Time) error {
	args := m.Called(ctx, at)
	return args.Error(0)
}

// MockReferralGrantRepository is a mock implementation of ReferralGrantRepository
type MockReferralGrantRepository struct {
	mock.Mock
}

func (m *MockReferralGrantRepository) Create(ctx context.Context, grant *entities.ReferralGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockReferralGrantRepository) GetByInvitee(ctx context.Context, inviteeID uuid.UUID) (*entities.ReferralGrant, error) {
	args := m.Called(ctx, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralGrant), args.Error(1)
}

// MockCustodialWalletRepository is a mock implementation of CustodialWalletRepository
type MockCustodialWalletRepository struct {
	mock.Mock
}

func (m *MockCustodialWalletRepository) InsertIfAbsent(ctx context.Context, wallet *entities.CustodialWallet) (*entities.CustodialWallet, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CustodialWallet), args.Error(1)
}

func (m *MockCustodialWalletRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.CustodialWallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CustodialWallet), args.Error(1)
}

// MockAirdropClaimRepository is a mock implementation of AirdropClaimRepository
type MockAirdropClaimRepository struct {
	mock.Mock
}

func (m *MockAirdropClaimRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.AirdropClaim, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AirdropClaim), args.Error(1)
}

func (m *MockAirdropClaimRepository) CreatePending(ctx context.Context, claim *entities.AirdropClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockAirdropClaimRepository) UpdateOutcome(ctx context.Context, userID uuid.UUID, status entities.AirdropStatus, signature *string, errMsg *string) error {
	args := m.Called(ctx, userID, status, signature, errMsg)
	return args.Error(0)
}

// MockChapterRatingRepository is a mock implementation of ChapterRatingRepository
type MockChapterRatingRepository struct {
	mock.Mock
	Type entities.ContentType
}

func (m *MockChapterRatingRepository) ContentType() entities.ContentType {
	return m.Type
}

func (m *MockChapterRatingRepository) ChapterExists(ctx context.Context, chapterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, chapterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChapterRatingRepository) Upsert(ctx context.Context, rating *entities.ChapterRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockChapterRatingRepository) RefreshSummary(ctx context.Context, chapterID uuid.UUID) (*entities.RatingSummary, error) {
	args := m.Called(ctx, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RatingSummary), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
