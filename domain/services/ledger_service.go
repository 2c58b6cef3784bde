package services

import (
	"context"
	"fmt"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerSettings selects the balance every settlement moves
type LedgerSettings struct {
	Chain    string
	Currency string
	Decimals int32
}

type ledgerService struct {
	balanceRepo        interfaces.BalanceRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	settings           LedgerSettings
}

// NewLedgerService creates a ledger service over the configured chain and currency
func NewLedgerService(
	balanceRepo interfaces.BalanceRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
	settings LedgerSettings,
) interfaces.LedgerService {
	return &ledgerService{
		balanceRepo:        balanceRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		settings:           settings,
	}
}

func (s *ledgerService) key(accountID uuid.UUID) entities.BalanceKey {
	return entities.BalanceKey{AccountID: accountID, Chain: s.settings.Chain, Currency: s.settings.Currency}
}

// ValidateAmount rejects non-positive amounts and amounts finer than the ledger decimals
func (s *ledgerService) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", domain.ErrInvalidInput, amount)
	}
	if !amount.Equal(amount.Truncate(s.settings.Decimals)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", domain.ErrInvalidInput, amount, s.settings.Decimals)
	}
	return nil
}

// Credit increments the balance and records the change
func (s *ledgerService) Credit(ctx context.Context, change interfaces.BalanceChange) (*entities.Balance, error) {
	if err := s.ValidateAmount(change.Amount); err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.Increment(ctx, s.key(change.AccountID), s.settings.Decimals, change.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit account %s: %w", change.AccountID, err)
	}

	if err := s.record(ctx, balance, change.Amount, change); err != nil {
		return nil, err
	}
	return balance, nil
}

// Debit decrements the balance if it covers the amount and records the change
func (s *ledgerService) Debit(ctx context.Context, change interfaces.BalanceChange) (*entities.Balance, error) {
	if err := s.ValidateAmount(change.Amount); err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.Decrement(ctx, s.key(change.AccountID), change.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit account %s: %w", change.AccountID, err)
	}

	if err := s.record(ctx, balance, change.Amount.Neg(), change); err != nil {
		return nil, err
	}
	return balance, nil
}

// Covers reports whether the account currently holds at least amount
func (s *ledgerService) Covers(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (bool, error) {
	balance, err := s.balanceRepo.Get(ctx, s.key(accountID))
	if err != nil {
		return false, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance == nil {
		return !amount.IsPositive(), nil
	}
	return balance.Covers(amount), nil
}

// Balances lists every balance the account holds
func (s *ledgerService) Balances(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error) {
	balances, err := s.balanceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}

func (s *ledgerService) record(ctx context.Context, after *entities.Balance, delta decimal.Decimal, change interfaces.BalanceChange) error {
	history := &entities.BalanceHistory{
		AccountID:           change.AccountID,
		Chain:               after.Chain,
		Currency:            after.Currency,
		BalanceBefore:       after.Amount.Sub(delta),
		BalanceAfter:        after.Amount,
		ChangeAmount:        delta,
		TransactionType:     change.TransactionType,
		TransactionMetadata: change.Metadata,
	}
	if change.RelatedID != "" {
		history.WithRelated(change.RelatedID, change.RelatedType)
	}

	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record balance change: %w", err)
	}
	return nil
}
