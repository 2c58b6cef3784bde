package entities

import (
	"time"

	"github.com/google/uuid"
)

// CustodialWallet is the server-held keypair created for a user's airdrop
type CustodialWallet struct {
	UserID       uuid.UUID `db:"user_id"`
	PublicKey    string    `db:"public_key"`
	SealedSecret []byte    `db:"sealed_secret"`
	CreatedAt    time.Time `db:"created_at"`
}
