package domain

import "errors"

// Sentinel errors shared by every settlement operation. Callers wrap them with
// fmt.Errorf("%w: ...") and the HTTP layer maps them with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrExternalService   = errors.New("external service error")

	// ErrTransferRejected means a chain transfer definitively did not and
	// cannot land under its signature.
	ErrTransferRejected = errors.New("transfer rejected")

	// ErrRetryable marks serialization failures and deadlocks; the unit of
	// work that produced it may be replayed from the start.
	ErrRetryable = errors.New("retryable transaction failure")
)
