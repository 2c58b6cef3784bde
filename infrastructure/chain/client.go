package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	confirmationPollInterval = 500 * time.Millisecond

	// JSON-RPC code for a transaction whose preflight simulation failed.
	// The node does not forward such a transaction.
	preflightFailureCode = -32002
)

// Config configures the treasury client
type Config struct {
	RPCURL             string
	TokenMint          string
	TreasuryPrivateKey string
	RequestsPerSecond  float64
}

// Client talks to a Solana RPC node on behalf of the treasury. Every RPC call
// waits on a shared limiter so bursts of claims stay within node quotas.
type Client struct {
	rpc      *rpc.Client
	mint     solana.PublicKey
	treasury solana.PrivateKey
	limiter  *rate.Limiter
}

// NewClient creates a treasury client
func NewClient(cfg Config) (*Client, error) {
	mint, err := solana.PublicKeyFromBase58(cfg.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint: %w", err)
	}
	treasury, err := solana.PrivateKeyFromBase58(cfg.TreasuryPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury private key: %w", err)
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}

	return &Client{
		rpc:      rpc.New(cfg.RPCURL),
		mint:     mint,
		treasury: treasury,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

var _ interfaces.TokenChain = (*Client)(nil)

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *Client) mintDecimals(ctx context.Context) (uint8, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	supply, err := c.rpc.GetTokenSupply(ctx, c.mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply: %w", err)
	}
	return supply.Value.Decimals, nil
}

// TokenBalance returns the wallet's balance of the reward token
func (c *Client) TokenBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	owner, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid wallet address: %w", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, c.mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to derive token account: %w", err)
	}

	if err := c.wait(ctx); err != nil {
		return decimal.Zero, err
	}
	if _, err := c.rpc.GetAccountInfo(ctx, ata); err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get token account: %w", err)
	}

	if err := c.wait(ctx); err != nil {
		return decimal.Zero, err
	}
	balance, err := c.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentFinalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get token balance: %w", err)
	}
	raw, err := decimal.NewFromString(balance.Value.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid token amount %q: %w", balance.Value.Amount, err)
	}
	return raw.Shift(-int32(balance.Value.Decimals)), nil
}

// BuildTreasuryTransfer signs a transfer from the treasury's token account to
// the recipient's associated token account, creating it when missing
func (c *Client) BuildTreasuryTransfer(ctx context.Context, recipient string, amount decimal.Decimal) (*entities.SignedTransfer, error) {
	owner, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	decimals, err := c.mintDecimals(ctx)
	if err != nil {
		return nil, err
	}
	baseUnits := amount.Shift(int32(decimals))
	if !baseUnits.IsInteger() || !baseUnits.IsPositive() {
		return nil, fmt.Errorf("amount %s is not representable with %d decimals", amount, decimals)
	}

	payer := c.treasury.PublicKey()
	source, _, err := solana.FindAssociatedTokenAddress(payer, c.mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive treasury token account: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(owner, c.mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient token account: %w", err)
	}

	instructions := []solana.Instruction{}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := c.rpc.GetAccountInfo(ctx, destination); err != nil {
		if !errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("failed to get recipient token account: %w", err)
		}
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(payer, owner, c.mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferCheckedInstruction(
			uint64(baseUnits.IntPart()),
			decimals,
			source,
			c.mint,
			destination,
			payer,
			[]solana.PublicKey{},
		).Build())

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	latest, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &c.treasury
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	payload, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	return &entities.SignedTransfer{
		Signature:            tx.Signatures[0].String(),
		Payload:              payload,
		Recipient:            recipient,
		Amount:               amount,
		LastValidBlockHeight: latest.Value.LastValidBlockHeight,
	}, nil
}

// SubmitTransfer sends the signed transaction and polls until it is
// confirmed, fails on chain, or ctx expires
func (c *Client) SubmitTransfer(ctx context.Context, transfer *entities.SignedTransfer) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, transfer.Payload, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if isPreflightFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrTransferRejected, err)
		}
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	ticker := time.NewTicker(confirmationPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := c.wait(ctx); err != nil {
			return err
		}
		statuses, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.WithError(err).WithField("signature", sig.String()).Warn("Signature status lookup failed, retrying")
			continue
		}
		if len(statuses.Value) == 0 || statuses.Value[0] == nil {
			continue
		}
		status := statuses.Value[0]
		if status.Err != nil {
			return fmt.Errorf("%w: transaction %s failed on chain: %v", domain.ErrTransferRejected, sig, status.Err)
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
}

// TransferStatus reports where a previously signed transfer stands. The block
// height is read before the signature so a transfer that landed at or below
// lastValidBlockHeight is always visible once the height has moved past it.
func (c *Client) TransferStatus(ctx context.Context, signature string, lastValidBlockHeight uint64) (entities.AirdropStatus, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature: %w", err)
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get block height: %w", err)
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	statuses, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return "", fmt.Errorf("failed to get signature status: %w", err)
	}

	if len(statuses.Value) > 0 && statuses.Value[0] != nil {
		status := statuses.Value[0]
		switch {
		case status.Err != nil:
			return entities.AirdropStatusFailed, nil
		case status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed,
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized:
			return entities.AirdropStatusConfirmed, nil
		default:
			return entities.AirdropStatusSubmitted, nil
		}
	}

	if lastValidBlockHeight > 0 && height > lastValidBlockHeight {
		return entities.AirdropStatusFailed, nil
	}
	return entities.AirdropStatusUnconfirmed, nil
}

func isPreflightFailure(err error) bool {
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == preflightFailureCode
}
