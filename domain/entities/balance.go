package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceKey identifies one ledger balance
type BalanceKey struct {
	AccountID uuid.UUID
	Chain     string
	Currency  string
}

// Balance is the off-chain token amount an account holds for one chain and currency
type Balance struct {
	AccountID uuid.UUID       `db:"account_id"`
	Chain     string          `db:"chain"`
	Currency  string          `db:"currency"`
	Amount    decimal.Decimal `db:"amount"`
	Decimals  int32           `db:"decimals"`
	Version   int64           `db:"version"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Key returns the balance identity
func (b *Balance) Key() BalanceKey {
	return BalanceKey{AccountID: b.AccountID, Chain: b.Chain, Currency: b.Currency}
}

// Covers reports whether the balance can fund amount
func (b *Balance) Covers(amount decimal.Decimal) bool {
	return b.Amount.GreaterThanOrEqual(amount)
}
