package testhelpers

import (
	"context"

	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Credit(ctx context.Context, change interfaces.BalanceChange) (*entities.Balance, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, change interfaces.BalanceChange) (*entities.Balance, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Balance), args.Error(1)
}

func (m *MockLedgerService) Covers(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Balances(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Balance), args.Error(1)
}

func (m *MockLedgerService) ValidateAmount(amount decimal.Decimal) error {
	args := m.Called(amount)
	return args.Error(0)
}
