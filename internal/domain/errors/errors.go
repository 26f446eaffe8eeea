// Package errors defines domain-specific error types.
// Using typed errors (instead of strings) allows clients to handle specific cases.
//
// The taxonomy is small and closed: every failure that crosses the application
// boundary is one of InvalidArgument, InsufficientFunds, IdempotencyConflict,
// Transient or Internal. Infrastructure maps driver errors into these; the
// adapters map these onto transport codes.
//
// Pattern: Sentinel Errors + Custom Error Types
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors of the ledger domain.
var (
	// ErrInvalidArgument covers malformed caller input: unknown asset types,
	// non-positive amounts, missing idempotency keys, malformed UUIDs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEntityNotFound is returned by repositories when a lookup misses.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInsufficientFunds means the debited wallet cannot cover the amount.
	// The store transaction is rolled back and nothing is recorded.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrIdempotencyConflict means the idempotency key is already claimed by
	// a record that is not COMPLETED, or was claimed concurrently by another
	// request. The caller must retry later or use a new key.
	ErrIdempotencyConflict = errors.New("idempotency conflict")

	// ErrTransient marks failures that are safe to retry with the same
	// idempotency key: lock timeouts, statement timeouts, deadlocks,
	// serialization failures, connection loss.
	ErrTransient = errors.New("transient storage failure")

	// ErrInternal is the catch-all for unexpected failures.
	ErrInternal = errors.New("internal error")
)

// Derived sentinels, wrapped so errors.Is matches both the specific and the
// taxonomy-level error.
var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive with at most two fractional digits", ErrInvalidArgument)
	ErrUnknownAssetType = fmt.Errorf("%w: unknown asset type", ErrInvalidArgument)
	ErrMissingKey       = fmt.Errorf("%w: idempotency key is required", ErrInvalidArgument)
)

// DomainError is a custom error type that wraps errors with additional context.
// This allows us to add domain-specific information while maintaining the error chain.
//
// Pattern: Error Wrapping with Context
type DomainError struct {
	Code    string // Machine-readable error code (e.g., "INSUFFICIENT_FUNDS")
	Message string // Human-readable message
	Err     error  // Underlying error (for error chains)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents validation failures with field-level details.
// Useful for returning multiple validation errors at once.
//
// Pattern: Composite Error for Multiple Validations
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // What went wrong
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidArgument, so callers can
// treat field-level failures and sentinel failures uniformly.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(e))
}

// Is makes the collection match ErrInvalidArgument as well.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Helper functions for common error checking

// IsInvalidArgument checks whether an error belongs to the InvalidArgument class.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound checks if an error is an "entity not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsInsufficientFunds checks whether the debited wallet could not cover the amount.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsIdempotencyConflict checks whether an idempotency key was contested.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyConflict)
}

// IsTransient checks whether a failure is safe to retry with the same key.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var valErr ValidationError
	var valErrs ValidationErrors
	return errors.As(err, &valErr) || errors.As(err, &valErrs)
}
