package testhelpers

import (
	"context"

	"mangaverse/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTokenChain is a mock implementation of TokenChain
type MockTokenChain struct {
	mock.Mock
}

func (m *MockTokenChain) TokenBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	args := m.Called(ctx, walletAddress)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTokenChain) BuildTreasuryTransfer(ctx context.Context, recipient string, amount decimal.Decimal) (*entities.SignedTransfer, error) {
	args := m.Called(ctx, recipient, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SignedTransfer), args.Error(1)
}

func (m *MockTokenChain) SubmitTransfer(ctx context.Context, transfer *entities.SignedTransfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTokenChain) TransferStatus(ctx context.Context, signature string, lastValidBlockHeight uint64) (entities.AirdropStatus, error) {
	args := m.Called(ctx, signature, lastValidBlockHeight)
	return args.Get(0).(entities.AirdropStatus), args.Error(1)
}

// MockCustodialKeyGenerator is a mock implementation of CustodialKeyGenerator
type MockCustodialKeyGenerator struct {
	mock.Mock
}

func (m *MockCustodialKeyGenerator) NewCustodialKey() (string, []byte, error) {
	args := m.Called()
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}
