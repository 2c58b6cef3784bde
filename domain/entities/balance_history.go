package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RelatedType names the entity a history row's related id points at
type RelatedType string

const (
	RelatedTypeGame          RelatedType = "game"
	RelatedTypeRewardEpoch   RelatedType = "reward_epoch"
	RelatedTypeReferralGrant RelatedType = "referral_grant"
)

// BalanceHistory is an append-only record of one balance mutation
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	AccountID           uuid.UUID       `db:"account_id"`
	Chain               string          `db:"chain"`
	Currency            string          `db:"currency"`
	BalanceBefore       decimal.Decimal `db:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *string         `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// Validate checks the before/after arithmetic
func (bh *BalanceHistory) Validate() error {
	if bh.ChangeAmount.IsZero() {
		return errors.New("change amount cannot be zero")
	}
	if !bh.BalanceBefore.Add(bh.ChangeAmount).Equal(bh.BalanceAfter) {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter.IsNegative() {
		return errors.New("balance cannot go negative")
	}
	return nil
}

// WithRelated sets the related entity reference
func (bh *BalanceHistory) WithRelated(id string, relatedType RelatedType) *BalanceHistory {
	bh.RelatedID = &id
	bh.RelatedType = &relatedType
	return bh
}
