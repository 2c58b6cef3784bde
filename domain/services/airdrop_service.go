package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/events"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// AirdropSettings configures the treasury grant
type AirdropSettings struct {
	Amount       decimal.Decimal
	ChainTimeout time.Duration
}

type airdropService struct {
	accountRepo    interfaces.AccountRepository
	walletRepo     interfaces.CustodialWalletRepository
	claimRepo      interfaces.AirdropClaimRepository
	chain          interfaces.TokenChain
	keys           interfaces.CustodialKeyGenerator
	eventPublisher interfaces.EventPublisher
	settings       AirdropSettings
}

// NewAirdropService creates a new airdrop service
func NewAirdropService(
	accountRepo interfaces.AccountRepository,
	walletRepo interfaces.CustodialWalletRepository,
	claimRepo interfaces.AirdropClaimRepository,
	chain interfaces.TokenChain,
	keys interfaces.CustodialKeyGenerator,
	eventPublisher interfaces.EventPublisher,
	settings AirdropSettings,
) interfaces.AirdropService {
	if settings.ChainTimeout <= 0 {
		settings.ChainTimeout = 20 * time.Second
	}
	return &airdropService{
		accountRepo:    accountRepo,
		walletRepo:     walletRepo,
		claimRepo:      claimRepo,
		chain:          chain,
		keys:           keys,
		eventPublisher: eventPublisher,
		settings:       settings,
	}
}

// ResolveWallet returns the user's custodial wallet, generating it only when
// none is stored, plus any existing claim
func (s *airdropService) ResolveWallet(ctx context.Context, userID uuid.UUID) (*entities.CustodialWallet, *entities.AirdropClaim, error) {
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, userID)
	}

	wallet, err := s.walletRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get custodial wallet: %w", err)
	}
	if wallet == nil {
		publicKey, sealedSecret, err := s.keys.NewCustodialKey()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate custodial key: %w", err)
		}
		wallet, err = s.walletRepo.InsertIfAbsent(ctx, &entities.CustodialWallet{
			UserID:       userID,
			PublicKey:    publicKey,
			SealedSecret: sealedSecret,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to store custodial wallet: %w", err)
		}
		log.WithFields(log.Fields{
			"userID":    userID,
			"publicKey": wallet.PublicKey,
		}).Info("Custodial wallet ready")
	}

	claim, err := s.claimRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get airdrop claim: %w", err)
	}
	return wallet, claim, nil
}

// CheckEligibility rejects wallets that already hold the token
func (s *airdropService) CheckEligibility(ctx context.Context, walletAddress string) error {
	chainCtx, cancel := context.WithTimeout(ctx, s.settings.ChainTimeout)
	defer cancel()

	balance, err := s.chain.TokenBalance(chainCtx, walletAddress)
	if err != nil {
		return fmt.Errorf("%w: token balance lookup failed: %v", domain.ErrExternalService, err)
	}
	if balance.IsPositive() {
		return fmt.Errorf("%w: wallet %s already holds %s tokens", domain.ErrAlreadyClaimed, walletAddress, balance)
	}
	return nil
}

// PrepareTransfer builds and signs the treasury transfer
func (s *airdropService) PrepareTransfer(ctx context.Context, walletAddress string) (*entities.SignedTransfer, error) {
	chainCtx, cancel := context.WithTimeout(ctx, s.settings.ChainTimeout)
	defer cancel()

	transfer, err := s.chain.BuildTreasuryTransfer(chainCtx, walletAddress, s.settings.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build treasury transfer: %v", domain.ErrExternalService, err)
	}
	return transfer, nil
}

// RecordPending stores the signature before the transfer leaves the process
func (s *airdropService) RecordPending(ctx context.Context, userID uuid.UUID, transfer *entities.SignedTransfer) error {
	signature := transfer.Signature
	claim := &entities.AirdropClaim{
		UserID:               userID,
		PublicKey:            transfer.Recipient,
		Amount:               transfer.Amount,
		Signature:            &signature,
		Status:               entities.AirdropStatusPending,
		LastValidBlockHeight: transfer.LastValidBlockHeight,
	}
	if err := s.claimRepo.CreatePending(ctx, claim); err != nil {
		return fmt.Errorf("failed to record pending airdrop: %w", err)
	}
	return nil
}

// Submit sends the transfer once. Only a definitive rejection is reported as
// failed; a timeout or transport error is unconfirmed because the transaction
// may still land.
func (s *airdropService) Submit(ctx context.Context, transfer *entities.SignedTransfer) *entities.AirdropResult {
	chainCtx, cancel := context.WithTimeout(ctx, s.settings.ChainTimeout)
	defer cancel()

	signature := transfer.Signature
	result := &entities.AirdropResult{WalletAddress: transfer.Recipient, Signature: &signature}

	err := s.chain.SubmitTransfer(chainCtx, transfer)
	switch {
	case err == nil:
		result.Status = entities.AirdropStatusConfirmed
	case errors.Is(err, domain.ErrTransferRejected):
		msg := err.Error()
		result.Status = entities.AirdropStatusFailed
		result.ConfirmationError = &msg
	case errors.Is(err, context.DeadlineExceeded):
		msg := fmt.Sprintf("transaction not confirmed within %s", s.settings.ChainTimeout)
		result.Status = entities.AirdropStatusUnconfirmed
		result.ConfirmationError = &msg
	default:
		msg := fmt.Sprintf("transaction outcome unknown: %v", err)
		result.Status = entities.AirdropStatusUnconfirmed
		result.ConfirmationError = &msg
	}

	log.WithFields(log.Fields{
		"recipient": transfer.Recipient,
		"signature": signature,
		"status":    result.Status,
	}).Info("Airdrop transfer submitted")
	return result
}

// ReconcileClaim asks the chain where a stored, unresolved claim stands. The
// returned result carries the claim's stored signature.
func (s *airdropService) ReconcileClaim(ctx context.Context, claim *entities.AirdropClaim) (*entities.AirdropResult, error) {
	if claim.Signature == nil {
		return nil, fmt.Errorf("%w: airdrop claim for %s has no signature", domain.ErrInvalidInput, claim.UserID)
	}

	chainCtx, cancel := context.WithTimeout(ctx, s.settings.ChainTimeout)
	defer cancel()

	status, err := s.chain.TransferStatus(chainCtx, *claim.Signature, claim.LastValidBlockHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: transfer status lookup failed: %v", domain.ErrExternalService, err)
	}

	result := &entities.AirdropResult{
		WalletAddress: claim.PublicKey,
		Signature:     claim.Signature,
		Status:        status,
	}
	if status != entities.AirdropStatusConfirmed {
		msg := "previous airdrop transfer has not been confirmed yet"
		if status == entities.AirdropStatusFailed {
			msg = "previous airdrop transfer failed on chain or expired without landing"
		}
		result.ConfirmationError = &msg
	}
	return result, nil
}

// RecordOutcome stores the submission result and announces it
func (s *airdropService) RecordOutcome(ctx context.Context, userID uuid.UUID, result *entities.AirdropResult) error {
	if err := s.claimRepo.UpdateOutcome(ctx, userID, result.Status, result.Signature, result.ConfirmationError); err != nil {
		return fmt.Errorf("failed to record airdrop outcome: %w", err)
	}

	event := events.AirdropClaimEvent{
		UserID:    userID,
		PublicKey: result.WalletAddress,
		Status:    result.Status,
	}
	if result.Signature != nil {
		event.Signature = *result.Signature
	}
	if result.ConfirmationError != nil {
		event.Error = *result.ConfirmationError
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish airdrop claim event")
	}
	return nil
}
