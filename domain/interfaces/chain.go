package interfaces

import (
	"context"

	"mangaverse/domain/entities"

	"github.com/shopspring/decimal"
)

// TokenChain is the on-chain collaborator used by the airdrop settler
type TokenChain interface {
	// TokenBalance returns the wallet's balance of the reward token.
	// A wallet without a token account has a zero balance.
	TokenBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error)

	// BuildTreasuryTransfer builds and signs a treasury transfer to
	// recipient without submitting it
	BuildTreasuryTransfer(ctx context.Context, recipient string, amount decimal.Decimal) (*entities.SignedTransfer, error)

	// SubmitTransfer sends a signed transfer and waits for confirmation.
	// Only errors wrapping domain.ErrTransferRejected are definitive; any
	// other error leaves the outcome unknown.
	SubmitTransfer(ctx context.Context, transfer *entities.SignedTransfer) error

	// TransferStatus looks up a previously signed transfer. It reports
	// failed only when the transfer errored on chain or its blockhash
	// expired without it landing.
	TransferStatus(ctx context.Context, signature string, lastValidBlockHeight uint64) (entities.AirdropStatus, error)
}

// CustodialKeyGenerator creates custodial keypairs
type CustodialKeyGenerator interface {
	// NewCustodialKey returns a fresh public key and its sealed secret key
	NewCustodialKey() (publicKey string, sealedSecret []byte, err error)
}
