package application

import (
	"context"
	"errors"
	"fmt"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type airdropHandler struct {
	tx       transactionRunner
	chain    interfaces.TokenChain
	keys     interfaces.CustodialKeyGenerator
	settings Settings
}

// NewAirdropHandler creates a new AirdropHandler. chain and keys may be nil
// when no treasury is configured, in which case every claim fails with an
// external service error.
func NewAirdropHandler(
	uowFactory UnitOfWorkFactory,
	chain interfaces.TokenChain,
	keys interfaces.CustodialKeyGenerator,
	settings Settings,
	observer TransactionObserver,
) AirdropHandler {
	return &airdropHandler{
		tx:       transactionRunner{uowFactory: uowFactory, observer: observer},
		chain:    chain,
		keys:     keys,
		settings: settings,
	}
}

func (h *airdropHandler) service(uow UnitOfWork) interfaces.AirdropService {
	return services.NewAirdropService(
		uow.AccountRepository(),
		uow.CustodialWalletRepository(),
		uow.AirdropClaimRepository(),
		h.chain,
		h.keys,
		uow.EventBus(),
		h.settings.Airdrop,
	)
}

// chainService serves the steps that only talk to the chain. They run
// outside any transaction so no row lock is held across RPC round trips.
func (h *airdropHandler) chainService() interfaces.AirdropService {
	return services.NewAirdropService(nil, nil, nil, h.chain, h.keys, nil, h.settings.Airdrop)
}

// ClaimAirdrop grants the one-time treasury transfer to a user's custodial wallet
func (h *airdropHandler) ClaimAirdrop(ctx context.Context, userID uuid.UUID) (*entities.AirdropResult, error) {
	if h.chain == nil || h.keys == nil {
		return nil, fmt.Errorf("%w: airdrop treasury is not configured", domain.ErrExternalService)
	}

	var wallet *entities.CustodialWallet
	var claim *entities.AirdropClaim
	err := h.tx.run(ctx, "airdrop_resolve_wallet", func(uow UnitOfWork) error {
		var err error
		wallet, claim, err = h.service(uow).ResolveWallet(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	chainSvc := h.chainService()

	if claim != nil && !claim.CanRetry() {
		// Eligibility is checked while resolving the stored claim
		result, retry, err := h.resolveExistingClaim(ctx, chainSvc, userID, claim)
		if !retry {
			return result, err
		}
	} else if err := chainSvc.CheckEligibility(ctx, wallet.PublicKey); err != nil {
		return nil, err
	}

	transfer, err := chainSvc.PrepareTransfer(ctx, wallet.PublicKey)
	if err != nil {
		return nil, err
	}

	err = h.tx.run(ctx, "airdrop_record_pending", func(uow UnitOfWork) error {
		return h.service(uow).RecordPending(ctx, userID, transfer)
	})
	if errors.Is(err, domain.ErrConflict) {
		// Another request recorded its transfer first
		var current *entities.AirdropClaim
		err = h.tx.run(ctx, "airdrop_reload_claim", func(uow UnitOfWork) error {
			var err error
			current, err = uow.AirdropClaimRepository().GetByUser(ctx, userID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("%w: airdrop claim for %s disappeared", domain.ErrConflict, userID)
		}
		return current.Result(), nil
	}
	if err != nil {
		return nil, err
	}

	result := chainSvc.Submit(ctx, transfer)

	if err := h.recordOutcome(ctx, userID, result); err != nil {
		log.WithFields(log.Fields{
			"userID":    userID,
			"signature": transfer.Signature,
			"status":    result.Status,
			"error":     err,
		}).Error("Failed to record airdrop outcome")
	}

	return result, nil
}

// resolveExistingClaim answers a claim that must not be resubmitted as is. A
// stored claim whose wallet now holds tokens is promoted to confirmed. Otherwise
// its transfer is looked up on chain, and retry is true only when that
// transfer can no longer land.
func (h *airdropHandler) resolveExistingClaim(
	ctx context.Context,
	chainSvc interfaces.AirdropService,
	userID uuid.UUID,
	claim *entities.AirdropClaim,
) (result *entities.AirdropResult, retry bool, err error) {
	if claim.Status == entities.AirdropStatusConfirmed {
		return nil, false, fmt.Errorf("%w: user %s already received the airdrop", domain.ErrAlreadyClaimed, userID)
	}

	err = chainSvc.CheckEligibility(ctx, claim.PublicKey)
	if errors.Is(err, domain.ErrAlreadyClaimed) {
		confirmed := &entities.AirdropResult{
			WalletAddress: claim.PublicKey,
			Signature:     claim.Signature,
			Status:        entities.AirdropStatusConfirmed,
		}
		if recordErr := h.recordOutcome(ctx, userID, confirmed); recordErr != nil {
			log.WithFields(log.Fields{
				"userID": userID,
				"error":  recordErr,
			}).Error("Failed to promote airdrop claim to confirmed")
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	fields := log.Fields{
		"userID":    userID,
		"status":    claim.Status,
		"signature": claim.SignatureValue(),
	}

	current, err := chainSvc.ReconcileClaim(ctx, claim)
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Could not look up airdrop transfer, returning stored claim")
		return claim.Result(), false, nil
	}
	if current.Status == claim.Status {
		log.WithFields(fields).Info("Returning unresolved airdrop claim without resubmitting")
		return claim.Result(), false, nil
	}

	if err := h.recordOutcome(ctx, userID, current); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to record reconciled airdrop claim")
		return claim.Result(), false, nil
	}

	fields["reconciledStatus"] = current.Status
	if current.Status == entities.AirdropStatusFailed {
		log.WithFields(fields).Info("Previous airdrop transfer can no longer land, submitting a new one")
		return nil, true, nil
	}
	log.WithFields(fields).Info("Airdrop claim reconciled")
	return current, false, nil
}

func (h *airdropHandler) recordOutcome(ctx context.Context, userID uuid.UUID, result *entities.AirdropResult) error {
	return h.tx.run(ctx, "airdrop_record_outcome", func(uow UnitOfWork) error {
		return h.service(uow).RecordOutcome(ctx, userID, result)
	})
}
