package entities

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user identified by a wallet address
type Account struct {
	ID            uuid.UUID  `db:"id"`
	WalletAddress string     `db:"wallet_address"`
	ReferralCode  *string    `db:"referral_code"`
	ReferredBy    *uuid.UUID `db:"referred_by"`
	WeeklyPoints  int64      `db:"weekly_points"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// HasReferralCode returns true once a code has been issued
func (a *Account) HasReferralCode() bool {
	return a.ReferralCode != nil && *a.ReferralCode != ""
}

// QualifiesForReward returns true if the account accrued points this week
func (a *Account) QualifiesForReward() bool {
	return a.WeeklyPoints > 0
}
