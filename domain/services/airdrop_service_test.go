package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type airdropFixture struct {
	accountRepo *testhelpers.MockAccountRepository
	walletRepo  *testhelpers.MockCustodialWalletRepository
	claimRepo   *testhelpers.MockAirdropClaimRepository
	chain       *testhelpers.MockTokenChain
	keys        *testhelpers.MockCustodialKeyGenerator
	publisher   *testhelpers.MockEventPublisher
	service     *airdropService
}

func newAirdropFixture() *airdropFixture {
	f := &airdropFixture{
		accountRepo: new(testhelpers.MockAccountRepository),
		walletRepo:  new(testhelpers.MockCustodialWalletRepository),
		claimRepo:   new(testhelpers.MockAirdropClaimRepository),
		chain:       new(testhelpers.MockTokenChain),
		keys:        new(testhelpers.MockCustodialKeyGenerator),
		publisher:   new(testhelpers.MockEventPublisher),
	}
	f.service = NewAirdropService(f.accountRepo, f.walletRepo, f.claimRepo, f.chain, f.keys, f.publisher,
		AirdropSettings{Amount: decimal.NewFromInt(100), ChainTimeout: time.Second}).(*airdropService)
	return f
}

func TestAirdropService_ResolveWallet(t *testing.T) {
	t.Parallel()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		f := newAirdropFixture()
		id := uuid.New()
		f.accountRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, _, err := f.service.ResolveWallet(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.keys.AssertNotCalled(t, "NewCustodialKey")
	})

	t.Run("existing wallet is never regenerated", func(t *testing.T) {
		t.Parallel()
		f := newAirdropFixture()
		id := uuid.New()
		existing := &entities.CustodialWallet{UserID: id, PublicKey: "pub-existing"}
		f.accountRepo.On("GetByID", mock.Anything, id).Return(&entities.Account{ID: id}, nil)
		f.walletRepo.On("GetByUser", mock.Anything, id).Return(existing, nil)
		f.claimRepo.On("GetByUser", mock.Anything, id).Return(nil, nil)

		wallet, claim, err := f.service.ResolveWallet(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "pub-existing", wallet.PublicKey)
		assert.Nil(t, claim)
		f.keys.AssertNotCalled(t, "NewCustodialKey")
		f.walletRepo.AssertNotCalled(t, "InsertIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("first claim creates the wallet", func(t *testing.T) {
		t.Parallel()
		f := newAirdropFixture()
		id := uuid.New()
		f.accountRepo.On("GetByID", mock.Anything, id).Return(&entities.Account{ID: id}, nil)
		f.walletRepo.On("GetByUser", mock.Anything, id).Return(nil, nil)
		f.keys.On("NewCustodialKey").Return("pub-new", []byte("sealed"), nil)
		f.walletRepo.On("InsertIfAbsent", mock.Anything, mock.MatchedBy(func(w *entities.CustodialWallet) bool {
			return w.UserID == id && w.PublicKey == "pub-new"
		})).Return(&entities.CustodialWallet{UserID: id, PublicKey: "pub-new"}, nil)
		f.claimRepo.On("GetByUser", mock.Anything, id).Return(nil, nil)

		wallet, _, err := f.service.ResolveWallet(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "pub-new", wallet.PublicKey)
	})

	t.Run("racing insert keeps the stored wallet", func(t *testing.T) {
		t.Parallel()
		f := newAirdropFixture()
		id := uuid.New()
		f.accountRepo.On("GetByID", mock.Anything, id).Return(&entities.Account{ID: id}, nil)
		f.walletRepo.On("GetByUser", mock.Anything, id).Return(nil, nil)
		f.keys.On("NewCustodialKey").Return("pub-loser", []byte("sealed"), nil)
		f.walletRepo.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(&entities.CustodialWallet{UserID: id, PublicKey: "pub-winner"}, nil)
		f.claimRepo.On("GetByUser", mock.Anything, id).Return(nil, nil)

		wallet, _, err := f.service.ResolveWallet(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "pub-winner", wallet.PublicKey)
	})
}

func TestAirdropService_CheckEligibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		balance decimal.Decimal
		err     error
		wantErr error
	}{
		{name: "empty wallet is eligible", balance: decimal.Zero},
		{name: "funded wallet already claimed", balance: decimal.NewFromInt(100), wantErr: domain.ErrAlreadyClaimed},
		{name: "chain unavailable", balance: decimal.Zero, err: errors.New("rpc down"), wantErr: domain.ErrExternalService},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAirdropFixture()
			f.chain.On("TokenBalance", mock.Anything, "pub").Return(tt.balance, tt.err)

			err := f.service.CheckEligibility(context.Background(), "pub")
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAirdropService_Submit(t *testing.T) {
	t.Parallel()

	transfer := &entities.SignedTransfer{Signature: "sig-1", Recipient: "pub", Amount: decimal.NewFromInt(100)}

	tests := []struct {
		name          string
		submitErr     error
		wantStatus    entities.AirdropStatus
		wantSignature bool
		wantError     bool
	}{
		{name: "confirmed", wantStatus: entities.AirdropStatusConfirmed, wantSignature: true},
		{name: "timeout is unconfirmed", submitErr: context.DeadlineExceeded, wantStatus: entities.AirdropStatusUnconfirmed, wantSignature: true, wantError: true},
		{name: "transport error is unconfirmed", submitErr: errors.New("connection reset by peer"), wantStatus: entities.AirdropStatusUnconfirmed, wantSignature: true, wantError: true},
		{name: "rejected is failed", submitErr: fmt.Errorf("%w: insufficient lamports", domain.ErrTransferRejected), wantStatus: entities.AirdropStatusFailed, wantSignature: true, wantError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAirdropFixture()
			f.chain.On("SubmitTransfer", mock.Anything, transfer).Return(tt.submitErr).Once()

			result := f.service.Submit(context.Background(), transfer)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantSignature, result.Signature != nil)
			assert.Equal(t, tt.wantError, result.ConfirmationError != nil)
			f.chain.AssertNumberOfCalls(t, "SubmitTransfer", 1)
		})
	}
}

func TestAirdropService_RecordPendingAndOutcome(t *testing.T) {
	t.Parallel()

	f := newAirdropFixture()
	id := uuid.New()
	transfer := &entities.SignedTransfer{Signature: "sig-1", Recipient: "pub", Amount: decimal.NewFromInt(100), LastValidBlockHeight: 1200}

	f.claimRepo.On("CreatePending", mock.Anything, mock.MatchedBy(func(c *entities.AirdropClaim) bool {
		return c.UserID == id && c.Status == entities.AirdropStatusPending && c.SignatureValue() == "sig-1" &&
			c.LastValidBlockHeight == 1200
	})).Return(nil)
	require.NoError(t, f.service.RecordPending(context.Background(), id, transfer))

	sig := "sig-1"
	result := &entities.AirdropResult{WalletAddress: "pub", Signature: &sig, Status: entities.AirdropStatusConfirmed}
	f.claimRepo.On("UpdateOutcome", mock.Anything, id, entities.AirdropStatusConfirmed, &sig, (*string)(nil)).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)

	require.NoError(t, f.service.RecordOutcome(context.Background(), id, result))
	f.claimRepo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestAirdropService_ReconcileClaim(t *testing.T) {
	t.Parallel()

	signature := "sig-stored"
	tests := []struct {
		name       string
		chainState entities.AirdropStatus
		chainErr   error
		wantStatus entities.AirdropStatus
		wantMsg    bool
		wantErr    error
	}{
		{name: "landed", chainState: entities.AirdropStatusConfirmed, wantStatus: entities.AirdropStatusConfirmed},
		{name: "still in flight", chainState: entities.AirdropStatusUnconfirmed, wantStatus: entities.AirdropStatusUnconfirmed, wantMsg: true},
		{name: "expired", chainState: entities.AirdropStatusFailed, wantStatus: entities.AirdropStatusFailed, wantMsg: true},
		{name: "lookup error", chainErr: errors.New("rpc unavailable"), wantErr: domain.ErrExternalService},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newAirdropFixture()
			claim := &entities.AirdropClaim{
				UserID:               uuid.New(),
				PublicKey:            "pub",
				Signature:            &signature,
				Status:               entities.AirdropStatusUnconfirmed,
				LastValidBlockHeight: 900,
			}
			f.chain.On("TransferStatus", mock.Anything, "sig-stored", uint64(900)).Return(tt.chainState, tt.chainErr).Once()

			result, err := f.service.ReconcileClaim(context.Background(), claim)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, "sig-stored", *result.Signature)
			assert.Equal(t, tt.wantMsg, result.ConfirmationError != nil)
		})
	}

	t.Run("claim without signature", func(t *testing.T) {
		t.Parallel()
		f := newAirdropFixture()
		_, err := f.service.ReconcileClaim(context.Background(), &entities.AirdropClaim{UserID: uuid.New(), Status: entities.AirdropStatusPending})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.chain.AssertNotCalled(t, "TransferStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
