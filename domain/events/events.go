package events

import (
	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType identifies a settlement event
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeGameCompleted      EventType = "game_completed"
	EventTypeRewardDistribution EventType = "reward_distribution"
	EventTypeReferralGranted    EventType = "referral_granted"
	EventTypeAirdropClaim       EventType = "airdrop_claim"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every ledger mutation
type BalanceChangeEvent struct {
	AccountID       uuid.UUID                `json:"account_id"`
	Chain           string                   `json:"chain"`
	Currency        string                   `json:"currency"`
	OldBalance      decimal.Decimal          `json:"old_balance"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
	ChangeAmount    decimal.Decimal          `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// GameCompletedEvent is emitted when a game settles with a winner
type GameCompletedEvent struct {
	GameID uuid.UUID       `json:"game_id"`
	Winner string          `json:"winner"`
	Loser  string          `json:"loser"`
	Stake  decimal.Decimal `json:"stake"`
	Round  int             `json:"round"`
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// RewardDistributionEvent summarizes one weekly run
type RewardDistributionEvent struct {
	Pool             decimal.Decimal `json:"pool"`
	TotalPoints      int64           `json:"total_points"`
	Recipients       int             `json:"recipients"`
	TotalDistributed decimal.Decimal `json:"total_distributed"`
	Dust             decimal.Decimal `json:"dust"`
}

func (e RewardDistributionEvent) Type() EventType {
	return EventTypeRewardDistribution
}

// ReferralGrantedEvent is emitted once per invitee
type ReferralGrantedEvent struct {
	InviterID uuid.UUID       `json:"inviter_id"`
	InviteeID uuid.UUID       `json:"invitee_id"`
	Bonus     decimal.Decimal `json:"bonus"`
}

func (e ReferralGrantedEvent) Type() EventType {
	return EventTypeReferralGranted
}

// AirdropClaimEvent reports the outcome of a treasury transfer
type AirdropClaimEvent struct {
	UserID    uuid.UUID              `json:"user_id"`
	PublicKey string                 `json:"public_key"`
	Signature string                 `json:"signature,omitempty"`
	Status    entities.AirdropStatus `json:"status"`
	Error     string                 `json:"error,omitempty"`
}

func (e AirdropClaimEvent) Type() EventType {
	return EventTypeAirdropClaim
}
