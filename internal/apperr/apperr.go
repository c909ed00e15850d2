// Package apperr defines the error kinds shared by the domain services.
// Handlers map these onto HTTP statuses; services wrap them with context
// using fmt.Errorf and %w so callers can test with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound means the target record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIllegalTransition means the consultation is not in a status
	// from which the requested transition is allowed.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrValidation means the input is malformed or violates a business rule.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a concurrent writer changed the record first
	// (optimistic version mismatch).
	ErrConflict = errors.New("concurrent update conflict")

	// ErrInsufficientFunds means a debit would drive the wallet balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrForbidden means the actor is not allowed to perform the operation
	// on this record.
	ErrForbidden = errors.New("forbidden")
)
