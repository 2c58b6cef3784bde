package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AirdropStatus tracks a treasury transfer through submission
type AirdropStatus string

const (
	AirdropStatusPending     AirdropStatus = "pending"
	AirdropStatusSubmitted   AirdropStatus = "submitted"
	AirdropStatusConfirmed   AirdropStatus = "confirmed"
	AirdropStatusUnconfirmed AirdropStatus = "unconfirmed"
	AirdropStatusFailed      AirdropStatus = "failed"
)

// AirdropClaim is the single claim row a user may hold
type AirdropClaim struct {
	ID        int64           `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	PublicKey string          `db:"public_key"`
	Amount    decimal.Decimal `db:"amount"`
	Signature *string         `db:"signature"`
	Status    AirdropStatus   `db:"status"`
	Error     *string         `db:"error"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`

	// LastValidBlockHeight is the last block height at which the signed
	// transaction can still land
	LastValidBlockHeight uint64 `db:"last_valid_block_height"`
}

// CanRetry returns true only for claims whose transfer definitively failed.
// A pending claim may have reached the chain before the process stopped, so
// it is treated like an unconfirmed one.
func (c *AirdropClaim) CanRetry() bool {
	return c.Status == AirdropStatusFailed
}

// SignatureValue returns the stored signature or an empty string
func (c *AirdropClaim) SignatureValue() string {
	if c.Signature == nil {
		return ""
	}
	return *c.Signature
}

// SignedTransfer is a treasury transfer that has been built and signed but
// not yet submitted
type SignedTransfer struct {
	Signature            string
	Payload              []byte
	Recipient            string
	Amount               decimal.Decimal
	LastValidBlockHeight uint64
}

// Result reports a previously recorded claim back to the claimant
func (c *AirdropClaim) Result() *AirdropResult {
	result := &AirdropResult{
		WalletAddress: c.PublicKey,
		Signature:     c.Signature,
		Status:        c.Status,
	}
	switch c.Status {
	case AirdropStatusPending, AirdropStatusSubmitted, AirdropStatusUnconfirmed:
		msg := "previous airdrop transfer has not been confirmed yet"
		result.ConfirmationError = &msg
	case AirdropStatusFailed:
		result.ConfirmationError = c.Error
	}
	return result
}
