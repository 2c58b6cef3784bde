package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mangaverse/domain"
	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

type testServer struct {
	server   *Server
	games    *mockGameHandler
	rewards  *mockRewardHandler
	accounts *mockAccountHandler
	airdrops *mockAirdropHandler
	ratings  *mockRatingHandler
	recorder *stubRecorder
}

func newTestServer() *testServer {
	ts := &testServer{
		games:    new(mockGameHandler),
		rewards:  new(mockRewardHandler),
		accounts: new(mockAccountHandler),
		airdrops: new(mockAirdropHandler),
		ratings:  new(mockRatingHandler),
		recorder: &stubRecorder{},
	}
	ts.server = New(Handlers{
		Game:    ts.games,
		Reward:  ts.rewards,
		Account: ts.accounts,
		Airdrop: ts.airdrops,
		Rating:  ts.ratings,
	}, Options{AdminToken: testAdminToken, Recorder: ts.recorder})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := ts.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestGameMove_Completed(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	gameID := uuid.New()
	winner := "wallet-a"
	ts.games.On("SubmitMove", mock.Anything, gameID, "wallet-b", "rock").
		Return(&entities.MoveResult{Status: entities.RoundOutcomeCompleted, Winner: &winner}, nil)

	status, body := ts.do(t, http.MethodPost, "/game/move", map[string]string{
		"gameId":        gameID.String(),
		"walletAddress": "wallet-b",
		"choice":        "rock",
	}, nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, winner, body["winner"])
	assert.Contains(t, body["message"], winner)
	ts.games.AssertExpectations(t)

	require.Len(t, ts.recorder.requests, 1)
	assert.Equal(t, "/game/move", ts.recorder.requests[0].route)
	assert.Equal(t, http.StatusOK, ts.recorder.requests[0].status)
}

func TestGameMove_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: game", domain.ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: not a player", domain.ErrForbidden), http.StatusForbidden},
		{"invalid move", fmt.Errorf("%w: lizard", domain.ErrInvalidInput), http.StatusBadRequest},
		{"completed", fmt.Errorf("%w: completed", domain.ErrConflict), http.StatusConflict},
		{"insufficient funds", fmt.Errorf("%w: stake", domain.ErrInsufficientFunds), http.StatusPaymentRequired},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer()
			gameID := uuid.New()
			ts.games.On("SubmitMove", mock.Anything, gameID, "wallet", "rock").Return(nil, tt.err)

			status, body := ts.do(t, http.MethodPost, "/game/move", map[string]string{
				"gameId":        gameID.String(),
				"walletAddress": "wallet",
				"choice":        "rock",
			}, nil)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			require.Len(t, ts.recorder.requests, 1)
			assert.Equal(t, tt.status, ts.recorder.requests[0].status)
		})
	}
}

func TestGameMove_RejectsMalformedRequests(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	status, body := ts.do(t, http.MethodPost, "/game/move", map[string]string{
		"gameId":        "not-a-uuid",
		"walletAddress": "wallet",
		"choice":        "rock",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "gameId")

	status, _ = ts.do(t, http.MethodPost, "/game/move", map[string]string{
		"gameId": uuid.NewString(),
		"choice": "rock",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	ts.games.AssertNotCalled(t, "SubmitMove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGameCreateAndGet(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	gameID := uuid.New()
	rock := entities.MoveRock
	game := &entities.Game{
		ID:            gameID,
		PlayerOne:     "wallet-a",
		PlayerOneMove: &rock,
		StakeAmount:   decimal.RequireFromString("2.5"),
		Status:        entities.GameStatusWaiting,
		Round:         1,
	}
	ts.games.On("CreateGame", mock.Anything, "wallet-a", mock.MatchedBy(func(stake decimal.Decimal) bool {
		return stake.Equal(decimal.RequireFromString("2.5"))
	})).Return(game, nil)
	ts.games.On("GetGame", mock.Anything, gameID).Return(game, nil)

	status, body := ts.do(t, http.MethodPost, "/game/create", map[string]any{
		"walletAddress": "wallet-a",
		"stake":         "2.5",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, gameID.String(), body["gameId"])
	assert.Equal(t, "waiting", body["status"])

	status, body = ts.do(t, http.MethodGet, "/game/"+gameID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["playerOneMoved"])
	assert.NotContains(t, body, "playerOneMove")
	assert.Equal(t, "2.5", body["stake"])
}

func TestWeeklyReward_RequiresAdminToken(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	status, body := ts.do(t, http.MethodPost, "/weekly-reward", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])

	status, _ = ts.do(t, http.MethodPost, "/weekly-reward", nil, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	ts.rewards.AssertNotCalled(t, "RunWeeklyDistribution", mock.Anything, mock.Anything)
}

func TestWeeklyReward_PassesPool(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	result := &entities.DistributionResult{
		Distributed:      true,
		Pool:             decimal.NewFromInt(500),
		TotalDistributed: decimal.RequireFromString("499.999999"),
		Dust:             decimal.RequireFromString("0.000001"),
		Recipients:       3,
	}
	ts.rewards.On("RunWeeklyDistribution", mock.Anything, mock.MatchedBy(func(pool *decimal.Decimal) bool {
		return pool != nil && pool.Equal(decimal.NewFromInt(500))
	})).Return(result, nil).Once()
	ts.rewards.On("RunWeeklyDistribution", mock.Anything, (*decimal.Decimal)(nil)).
		Return(&entities.DistributionResult{Distributed: false, Message: "cooldown"}, nil).Once()

	status, body := ts.do(t, http.MethodPost, "/weekly-reward", map[string]any{"pool": 500}, adminHeaders())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["distributed"])
	assert.Equal(t, "0.000001", body["dust"])

	status, body = ts.do(t, http.MethodPost, "/weekly-reward", nil, adminHeaders())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["distributed"])

	ts.rewards.AssertExpectations(t)
}

func TestUserSignUp(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	userID := uuid.New()
	ts.accounts.On("SignUp", mock.Anything, "wallet-new", "ABCD1234").
		Return(&entities.Account{ID: userID, WalletAddress: "wallet-new"}, nil)
	ts.accounts.On("SignUp", mock.Anything, "wallet-taken", "").
		Return(nil, fmt.Errorf("%w: registered", domain.ErrConflict))

	status, body := ts.do(t, http.MethodPost, "/user/signup", map[string]string{
		"wallet_address": "wallet-new",
		"referral_code":  "ABCD1234",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, userID.String(), body["user_id"])

	status, _ = ts.do(t, http.MethodPost, "/user/signup", map[string]string{"wallet_address": "wallet-taken"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/user/signup", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserPoints_AdminOnly(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	userID := uuid.New()
	ts.accounts.On("AwardPoints", mock.Anything, userID, int64(5)).Return(int64(12), nil)

	request := map[string]any{"user_id": userID.String(), "points": 5}
	status, _ := ts.do(t, http.MethodPost, "/user/points", request, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodPost, "/user/points", request, adminHeaders())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(12), body["weekly_points"])
}

func TestUserBalancesAndHistory(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	userID := uuid.New()
	ts.accounts.On("GetBalances", mock.Anything, userID).Return([]*entities.Balance{{
		AccountID: userID,
		Chain:     "solana",
		Currency:  "MVT",
		Amount:    decimal.RequireFromString("33.333333"),
		Decimals:  6,
	}}, nil)
	ts.accounts.On("GetHistory", mock.Anything, userID, 5).Return([]*entities.BalanceHistory{{
		AccountID:       userID,
		Chain:           "solana",
		Currency:        "MVT",
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    decimal.RequireFromString("33.333333"),
		ChangeAmount:    decimal.RequireFromString("33.333333"),
		TransactionType: entities.TransactionTypeWeeklyReward,
	}}, nil)

	status, body := ts.do(t, http.MethodGet, "/user/"+userID.String()+"/balances", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	balances, ok := body["balances"].([]any)
	require.True(t, ok)
	require.Len(t, balances, 1)
	assert.Equal(t, "33.333333", balances[0].(map[string]any)["amount"])

	status, body = ts.do(t, http.MethodGet, "/user/"+userID.String()+"/history?limit=5", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	history, ok := body["history"].([]any)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "weekly_reward", history[0].(map[string]any)["transaction_type"])

	status, _ = ts.do(t, http.MethodGet, "/user/not-a-uuid/balances", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAirdropWallet(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	userID := uuid.New()
	signature := "5sig"
	ts.airdrops.On("ClaimAirdrop", mock.Anything, userID).Return(&entities.AirdropResult{
		WalletAddress: "CustodialKey",
		Signature:     &signature,
		Status:        entities.AirdropStatusConfirmed,
	}, nil).Once()
	ts.airdrops.On("ClaimAirdrop", mock.Anything, userID).
		Return(nil, fmt.Errorf("%w: already funded", domain.ErrAlreadyClaimed)).Once()

	status, body := ts.do(t, http.MethodPost, "/user/airdrop-wallet", map[string]string{"user_id": userID.String()}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CustodialKey", body["userPublicKey"])
	assert.Equal(t, signature, body["signature"])
	assert.Nil(t, body["confirmationError"])

	status, body = ts.do(t, http.MethodPost, "/user/airdrop-wallet", map[string]string{"user_id": userID.String()}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "already claimed")
}

func TestAirdropWallet_ChainFailure(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	userID := uuid.New()
	ts.airdrops.On("ClaimAirdrop", mock.Anything, userID).
		Return(nil, fmt.Errorf("%w: rpc unavailable", domain.ErrExternalService))

	status, body := ts.do(t, http.MethodPost, "/user/airdrop-wallet", map[string]string{"user_id": userID.String()}, nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "rpc unavailable")
}

func TestReferralGenerate(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	ts.accounts.On("GenerateReferralCode", mock.Anything, "wallet-a").Return("QWER1234", nil)
	ts.accounts.On("GenerateReferralCode", mock.Anything, "wallet-missing").
		Return("", fmt.Errorf("%w: account", domain.ErrNotFound))

	status, body := ts.do(t, http.MethodPost, "/referral/generate", map[string]string{"wallet_address": "wallet-a"}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "QWER1234", body["referral_code"])

	status, _ = ts.do(t, http.MethodPost, "/referral/generate", map[string]string{"wallet_address": "wallet-missing"}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestContentRate(t *testing.T) {
	t.Parallel()
	ts := newTestServer()

	chapterID := uuid.New()
	userID := uuid.New()
	ts.ratings.On("RateChapter", mock.Anything, entities.ContentTypeNovel, chapterID, userID, 4).
		Return(&entities.RatingSummary{Average: decimal.RequireFromString("4.25"), Count: 4}, nil)

	status, body := ts.do(t, http.MethodPost, "/content/rate", map[string]any{
		"content_type": "novel",
		"chapter_id":   chapterID.String(),
		"user_id":      userID.String(),
		"score":        4,
	}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "4.25", body["average"])
	assert.Equal(t, float64(4), body["count"])
}
