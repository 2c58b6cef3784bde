package repository

import (
	"errors"
	"fmt"

	"mangaverse/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError maps postgres failures onto domain sentinels so callers can
// match them with errors.Is while keeping the driver error in the chain
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s violates %s: %w", domain.ErrConflict, action, pgErr.ConstraintName, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s references a missing row: %w", domain.ErrNotFound, action, err)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s violates %s: %w", domain.ErrInvalidInput, action, pgErr.ConstraintName, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s: %w", domain.ErrRetryable, action, err)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func parseDecimal(raw string, column string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", column, raw, err)
	}
	return value, nil
}
