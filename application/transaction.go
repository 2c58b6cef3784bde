package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/services"

	log "github.com/sirupsen/logrus"
)

const (
	maxTransactionAttempts = 3
	retryBackoff           = 50 * time.Millisecond
)

// TransactionObserver records the outcome of each unit of work
type TransactionObserver interface {
	RecordTransaction(operation string, duration time.Duration, err error)
}

// transactionRunner runs a function inside a unit of work, replaying it when
// postgres reports a serialization failure or deadlock
type transactionRunner struct {
	uowFactory UnitOfWorkFactory
	observer   TransactionObserver
}

func (r transactionRunner) run(ctx context.Context, operation string, fn func(uow UnitOfWork) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		start := time.Now()
		err = r.runOnce(ctx, fn)
		if r.observer != nil {
			r.observer.RecordTransaction(operation, time.Since(start), err)
		}
		if !errors.Is(err, domain.ErrRetryable) {
			return err
		}

		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   attempt,
			"error":     err,
		}).Warn("Retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func (r transactionRunner) runOnce(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newLedger(uow UnitOfWork, settings Settings) interfaces.LedgerService {
	return services.NewLedgerService(
		uow.BalanceRepository(),
		uow.BalanceHistoryRepository(),
		uow.EventBus(),
		settings.Ledger,
	)
}
