package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralGrant records that an invitee's referral bonus has been paid
type ReferralGrant struct {
	ID          int64           `db:"id"`
	InviterID   uuid.UUID       `db:"inviter_id"`
	InviteeID   uuid.UUID       `db:"invitee_id"`
	BonusAmount decimal.Decimal `db:"bonus_amount"`
	CreatedAt   time.Time       `db:"created_at"`
}
