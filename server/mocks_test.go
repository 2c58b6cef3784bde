package server

import (
	"context"
	"time"

	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockGameHandler struct {
	mock.Mock
}

func (m *mockGameHandler) CreateGame(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Game, error) {
	args := m.Called(ctx, walletAddress, stake)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *mockGameHandler) JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*entities.Game, error) {
	args := m.Called(ctx, gameID, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

func (m *mockGameHandler) SubmitMove(ctx context.Context, gameID uuid.UUID, walletAddress string, move string) (*entities.MoveResult, error) {
	args := m.Called(ctx, gameID, walletAddress, move)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MoveResult), args.Error(1)
}

func (m *mockGameHandler) GetGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Game), args.Error(1)
}

type mockRewardHandler struct {
	mock.Mock
}

func (m *mockRewardHandler) RunWeeklyDistribution(ctx context.Context, pool *decimal.Decimal) (*entities.DistributionResult, error) {
	args := m.Called(ctx, pool)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DistributionResult), args.Error(1)
}

type mockAccountHandler struct {
	mock.Mock
}

func (m *mockAccountHandler) SignUp(ctx context.Context, walletAddress string, referralCode string) (*entities.Account, error) {
	args := m.Called(ctx, walletAddress, referralCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *mockAccountHandler) GenerateReferralCode(ctx context.Context, walletAddress string) (string, error) {
	args := m.Called(ctx, walletAddress)
	return args.String(0), args.Error(1)
}

func (m *mockAccountHandler) AwardPoints(ctx context.Context, userID uuid.UUID, points int64) (int64, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountHandler) GetBalances(ctx context.Context, userID uuid.UUID) ([]*entities.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Balance), args.Error(1)
}

func (m *mockAccountHandler) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

type mockAirdropHandler struct {
	mock.Mock
}

func (m *mockAirdropHandler) ClaimAirdrop(ctx context.Context, userID uuid.UUID) (*entities.AirdropResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AirdropResult), args.Error(1)
}

type mockRatingHandler struct {
	mock.Mock
}

func (m *mockRatingHandler) RateChapter(ctx context.Context, contentType entities.ContentType, chapterID, userID uuid.UUID, score int) (*entities.RatingSummary, error) {
	args := m.Called(ctx, contentType, chapterID, userID, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RatingSummary), args.Error(1)
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type stubRecorder struct {
	requests []recordedRequest
}

func (r *stubRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.requests = append(r.requests, recordedRequest{method: method, route: route, status: status})
}
