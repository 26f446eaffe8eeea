// Package entities - Transaction is the single user-visible record of one
// balance movement. Exactly one Transaction row exists per idempotency key.
package entities

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// TransactionKind represents the business operation behind a transaction.
type TransactionKind string

const (
	TransactionKindTopUp TransactionKind = "TOP_UP" // User pays in, system wallet is debited
	TransactionKindBonus TransactionKind = "BONUS"  // Promotional grant, same flow as top-up
	TransactionKindSpend TransactionKind = "SPEND"  // User pays the system wallet
)

// IsValid checks if the transaction kind is valid.
func (k TransactionKind) IsValid() bool {
	switch k {
	case TransactionKindTopUp, TransactionKindBonus, TransactionKindSpend:
		return true
	default:
		return false
	}
}

// IsDebitFromUser reports whether the kind moves value from the user wallet
// to the system wallet.
func (k TransactionKind) IsDebitFromUser() bool {
	return k == TransactionKindSpend
}

// TransactionStatus represents the current state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"   // Claimed, not yet finalized
	TransactionStatusCompleted TransactionStatus = "COMPLETED" // Balance moved, ledger written
	TransactionStatusFailed    TransactionStatus = "FAILED"    // Reserved for reconciliation tooling
)

// IsValid checks if the transaction status is valid.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal returns true if the status is terminal (no further transitions).
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction represents one movement of an asset between a user and the
// system wallet. The PENDING row doubles as the idempotency claim: it is
// inserted and flipped to COMPLETED inside the same store transaction, so an
// observable PENDING row means a concurrent request is in flight.
//
// Entity Pattern:
// - Has identity (ID + idempotency key)
// - State machine: PENDING -> COMPLETED (FAILED reserved, never written here)
// - Immutable after completion
type Transaction struct {
	id             uuid.UUID
	idempotencyKey string // Client-provided, unique across all transactions
	kind           TransactionKind
	status         TransactionStatus
	userID         uuid.UUID
	assetTypeID    int32
	amount         valueobjects.Amount
	metadata       map[string]interface{}

	// assetCode is denormalized from asset_types on list reads; empty when
	// the row was loaded without the join.
	assetCode string

	createdAt   time.Time
	processedAt *time.Time
}

// NewTransaction creates a new PENDING transaction.
// Factory function with validation.
//
// Business Rules:
// - Idempotency key is required (uniqueness is enforced by the store)
// - Kind must be valid
// - Amount must be strictly positive
func NewTransaction(
	idempotencyKey string,
	kind TransactionKind,
	userID uuid.UUID,
	assetTypeID int32,
	amount valueobjects.Amount,
	metadata map[string]interface{},
) (*Transaction, error) {
	if idempotencyKey == "" {
		return nil, errors.ErrMissingKey
	}

	if !kind.IsValid() {
		return nil, errors.ValidationError{
			Field:   "kind",
			Message: "unknown transaction kind",
		}
	}

	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Transaction{
		id:             uuid.New(),
		idempotencyKey: idempotencyKey,
		kind:           kind,
		status:         TransactionStatusPending,
		userID:         userID,
		assetTypeID:    assetTypeID,
		amount:         amount,
		metadata:       metadata,
		createdAt:      time.Now(),
	}, nil
}

// ReconstructTransaction reconstructs a Transaction from stored data.
// Used by repository to hydrate entities from database.
func ReconstructTransaction(
	id uuid.UUID,
	idempotencyKey string,
	kind TransactionKind,
	status TransactionStatus,
	userID uuid.UUID,
	assetTypeID int32,
	amount valueobjects.Amount,
	metadata map[string]interface{},
	assetCode string,
	createdAt time.Time,
	processedAt *time.Time,
) *Transaction {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Transaction{
		id:             id,
		idempotencyKey: idempotencyKey,
		kind:           kind,
		status:         status,
		userID:         userID,
		assetTypeID:    assetTypeID,
		amount:         amount,
		metadata:       metadata,
		assetCode:      assetCode,
		createdAt:      createdAt,
		processedAt:    processedAt,
	}
}

// Getters

func (t *Transaction) ID() uuid.UUID {
	return t.id
}

func (t *Transaction) IdempotencyKey() string {
	return t.idempotencyKey
}

func (t *Transaction) Kind() TransactionKind {
	return t.kind
}

func (t *Transaction) Status() TransactionStatus {
	return t.status
}

func (t *Transaction) UserID() uuid.UUID {
	return t.userID
}

func (t *Transaction) AssetTypeID() int32 {
	return t.assetTypeID
}

func (t *Transaction) Amount() valueobjects.Amount {
	return t.amount
}

func (t *Transaction) Metadata() map[string]interface{} {
	return t.metadata
}

func (t *Transaction) AssetCode() string {
	return t.assetCode
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) ProcessedAt() *time.Time {
	return t.processedAt
}

// Business Methods

// IsPending returns true if the transaction has been claimed but not finalized.
func (t *Transaction) IsPending() bool {
	return t.status == TransactionStatusPending
}

// IsCompleted returns true if the transaction completed successfully.
func (t *Transaction) IsCompleted() bool {
	return t.status == TransactionStatusCompleted
}

// IsFinal returns true if the transaction is in a terminal state.
func (t *Transaction) IsFinal() bool {
	return t.status.IsFinal()
}

// State Machine Transitions

// MarkCompleted transitions the transaction to COMPLETED status.
// Business rule: only PENDING transactions can be completed.
func (t *Transaction) MarkCompleted() error {
	if !t.IsPending() {
		return errors.NewDomainError(
			"TRANSACTION_NOT_PENDING",
			"only pending transactions can be completed",
			errors.ErrInternal,
		)
	}

	now := time.Now()
	t.status = TransactionStatusCompleted
	t.processedAt = &now
	return nil
}
