package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveResult is returned from a move submission
type MoveResult struct {
	Status RoundOutcome
	Winner *string
	Game   *Game
}

// Message returns a short human readable summary of the result
func (r *MoveResult) Message() string {
	switch r.Status {
	case RoundOutcomeTie:
		return "Round tied, both players must choose again"
	case RoundOutcomeCompleted:
		if r.Winner != nil {
			return "Game completed, winner " + *r.Winner
		}
		return "Game completed"
	default:
		return "Move recorded, waiting for opponent"
	}
}

// RewardShare is one account's slice of a weekly pool
type RewardShare struct {
	AccountID uuid.UUID       `json:"account_id"`
	Points    int64           `json:"points"`
	Amount    decimal.Decimal `json:"amount"`
}

// DistributionResult summarizes a weekly distribution trigger
type DistributionResult struct {
	Distributed      bool            `json:"distributed"`
	NextEligibleAt   time.Time       `json:"next_eligible_at"`
	Message          string          `json:"message"`
	Pool             decimal.Decimal `json:"pool"`
	TotalPoints      int64           `json:"total_points"`
	TotalDistributed decimal.Decimal `json:"total_distributed"`
	Dust             decimal.Decimal `json:"dust"`
	Recipients       int             `json:"recipients"`
	Shares           []RewardShare   `json:"shares,omitempty"`
}

// AirdropResult is returned to the claimant
type AirdropResult struct {
	WalletAddress     string
	Signature         *string
	Status            AirdropStatus
	ConfirmationError *string
}
