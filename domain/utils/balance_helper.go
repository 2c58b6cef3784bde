package utils

import (
	"context"
	"fmt"

	"mangaverse/domain/entities"
	"mangaverse/domain/events"
	"mangaverse/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits a
// BalanceChangeEvent. Every ledger mutation goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := history.Validate(); err != nil {
		return fmt.Errorf("invalid balance history for account %s: %w", history.AccountID, err)
	}

	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		AccountID:       history.AccountID,
		Chain:           history.Chain,
		Currency:        history.Currency,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	}
	log.WithFields(log.Fields{
		"accountID":       event.AccountID,
		"currency":        event.Currency,
		"oldBalance":      event.OldBalance.String(),
		"newBalance":      event.NewBalance.String(),
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount.String(),
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
