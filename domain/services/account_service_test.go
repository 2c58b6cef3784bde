package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	accountRepo *testhelpers.MockAccountRepository
	grantRepo   *testhelpers.MockReferralGrantRepository
	historyRepo *testhelpers.MockBalanceHistoryRepository
	ledger      *testhelpers.MockLedgerService
	publisher   *testhelpers.MockEventPublisher
	service     *accountService
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		accountRepo: new(testhelpers.MockAccountRepository),
		grantRepo:   new(testhelpers.MockReferralGrantRepository),
		historyRepo: new(testhelpers.MockBalanceHistoryRepository),
		ledger:      new(testhelpers.MockLedgerService),
		publisher:   new(testhelpers.MockEventPublisher),
	}
	f.service = NewAccountService(f.accountRepo, f.grantRepo, f.historyRepo, f.ledger, f.publisher,
		AccountSettings{ReferralBonus: decimal.NewFromInt(10)}).(*accountService)
	return f
}

func TestNewReferralCode(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewReferralCode()
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestAccountService_SignUp(t *testing.T) {
	t.Parallel()

	t.Run("existing wallet conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(&entities.Account{ID: uuid.New()}, nil)

		_, err := f.service.SignUp(context.Background(), "wallet-a", "")
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		f.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
	})

	t.Run("unknown referral code is invalid", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(nil, nil)
		f.accountRepo.On("GetByReferralCode", mock.Anything, "NOPE1234").Return(nil, nil)

		_, err := f.service.SignUp(context.Background(), "wallet-a", "nope1234")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty wallet is invalid", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		_, err := f.service.SignUp(context.Background(), "  ", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("plain signup pays no bonus", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		created := &entities.Account{ID: uuid.New(), WalletAddress: "wallet-a"}
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(nil, nil)
		f.accountRepo.On("Create", mock.Anything, "wallet-a", (*uuid.UUID)(nil)).Return(created, nil)

		account, err := f.service.SignUp(context.Background(), "wallet-a", "")
		require.NoError(t, err)
		assert.Equal(t, created.ID, account.ID)
		f.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
		f.grantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("referral pays both parties exactly once", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		code := "ABCD1234"
		inviter := &entities.Account{ID: uuid.New(), WalletAddress: "wallet-inviter", ReferralCode: &code}
		invitee := &entities.Account{ID: uuid.New(), WalletAddress: "wallet-b", ReferredBy: &inviter.ID}

		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-b").Return(nil, nil)
		f.accountRepo.On("GetByReferralCode", mock.Anything, code).Return(inviter, nil)
		f.accountRepo.On("Create", mock.Anything, "wallet-b", &inviter.ID).Return(invitee, nil)
		f.grantRepo.On("Create", mock.Anything, mock.MatchedBy(func(g *entities.ReferralGrant) bool {
			return g.InviterID == inviter.ID && g.InviteeID == invitee.ID && g.BonusAmount.Equal(decimal.NewFromInt(10))
		})).Return(nil).Once()
		for _, id := range []uuid.UUID{inviter.ID, invitee.ID} {
			accountID := id
			f.ledger.On("Credit", mock.Anything, mock.MatchedBy(func(c interfaces.BalanceChange) bool {
				return c.AccountID == accountID && c.Amount.Equal(decimal.NewFromInt(10)) &&
					c.TransactionType == entities.TransactionTypeReferralBonus
			})).Return(&entities.Balance{}, nil).Once()
		}
		f.publisher.On("Publish", mock.Anything).Return(nil).Once()

		account, err := f.service.SignUp(context.Background(), "wallet-b", code)
		require.NoError(t, err)
		assert.Equal(t, invitee.ID, account.ID)

		f.grantRepo.AssertExpectations(t)
		f.ledger.AssertExpectations(t)
		f.ledger.AssertNumberOfCalls(t, "Credit", 2)
	})

	t.Run("duplicate grant aborts signup", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		code := "ABCD1234"
		inviter := &entities.Account{ID: uuid.New(), ReferralCode: &code}
		invitee := &entities.Account{ID: uuid.New()}

		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-b").Return(nil, nil)
		f.accountRepo.On("GetByReferralCode", mock.Anything, code).Return(inviter, nil)
		f.accountRepo.On("Create", mock.Anything, "wallet-b", &inviter.ID).Return(invitee, nil)
		f.grantRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: duplicate invitee", domain.ErrConflict))

		_, err := f.service.SignUp(context.Background(), "wallet-b", code)
		assert.ErrorIs(t, err, domain.ErrConflict)
		f.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything)
	})
}

func TestAccountService_GenerateReferralCode(t *testing.T) {
	t.Parallel()

	t.Run("returns existing code", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		code := "EXISTING"
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(&entities.Account{ID: uuid.New(), ReferralCode: &code}, nil)

		got, err := f.service.GenerateReferralCode(context.Background(), "wallet-a")
		require.NoError(t, err)
		assert.Equal(t, code, got)
		f.accountRepo.AssertNotCalled(t, "SetReferralCode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-x").Return(nil, nil)

		_, err := f.service.GenerateReferralCode(context.Background(), "wallet-x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("retries after a collision", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		account := &entities.Account{ID: uuid.New(), WalletAddress: "wallet-a"}
		codes := []string{"TAKEN000", "FRESH111"}
		next := 0
		f.service.newCode = func() string {
			code := codes[next]
			next++
			return code
		}

		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(account, nil)
		f.accountRepo.On("SetReferralCode", mock.Anything, account.ID, "TAKEN000").Return(false, nil)
		f.accountRepo.On("SetReferralCode", mock.Anything, account.ID, "FRESH111").Return(true, nil)

		got, err := f.service.GenerateReferralCode(context.Background(), "wallet-a")
		require.NoError(t, err)
		assert.Equal(t, "FRESH111", got)
	})

	t.Run("concurrent issue returns the winner's code", func(t *testing.T) {
		t.Parallel()
		f := newAccountFixture()
		id := uuid.New()
		winner := "WINNER00"
		f.service.newCode = func() string { return "LOSER000" }

		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(&entities.Account{ID: id}, nil).Once()
		f.accountRepo.On("SetReferralCode", mock.Anything, id, "LOSER000").Return(false, nil).Once()
		f.accountRepo.On("GetByWallet", mock.Anything, "wallet-a").Return(&entities.Account{ID: id, ReferralCode: &winner}, nil).Once()

		got, err := f.service.GenerateReferralCode(context.Background(), "wallet-a")
		require.NoError(t, err)
		assert.Equal(t, winner, got)
	})
}

func TestAccountService_AwardPoints(t *testing.T) {
	t.Parallel()

	f := newAccountFixture()
	id := uuid.New()

	_, err := f.service.AwardPoints(context.Background(), id, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.accountRepo.On("AddWeeklyPoints", mock.Anything, id, int64(7)).Return(int64(12), nil)
	total, err := f.service.AwardPoints(context.Background(), id, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestAccountService_GetBalances(t *testing.T) {
	t.Parallel()

	f := newAccountFixture()
	missing := uuid.New()
	f.accountRepo.On("GetByID", mock.Anything, missing).Return(nil, nil)

	_, err := f.service.GetBalances(context.Background(), missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id := uuid.New()
	balances := []*entities.Balance{{AccountID: id, Chain: "solana", Currency: "MVT", Amount: decimal.NewFromInt(3)}}
	f.accountRepo.On("GetByID", mock.Anything, id).Return(&entities.Account{ID: id}, nil)
	f.ledger.On("Balances", mock.Anything, id).Return(balances, nil)

	got, err := f.service.GetBalances(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, balances, got)
}
