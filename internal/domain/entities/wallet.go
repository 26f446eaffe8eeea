// Package entities - Wallet holds one user's balance of one asset type.
// It enforces the non-negative balance invariant on every mutation.
package entities

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// SystemUserID is the counterparty of every single-user operation. System
// wallets are seeded by migrations with large opening balances and take part
// in locking and ledger entries exactly like user wallets.
var SystemUserID = uuid.Nil

// Wallet represents one (user, asset type) balance.
// A user has at most one wallet per asset type; wallets are created lazily
// with a zero balance on first use.
//
// Entity Pattern:
// - Has identity (ID)
// - Enforces invariants (balance never negative)
// - Rich behavior (not just data)
type Wallet struct {
	id          int64
	userID      uuid.UUID
	assetTypeID int32
	balance     valueobjects.Amount

	// version supports optimistic update checks on top of the row locks.
	version int64

	createdAt time.Time
	updatedAt time.Time
}

// NewWallet creates a zero-balance wallet for a user and asset type.
// The store assigns the numeric id on insert.
func NewWallet(userID uuid.UUID, assetTypeID int32) (*Wallet, error) {
	if assetTypeID <= 0 {
		return nil, errors.ValidationError{
			Field:   "asset_type_id",
			Message: "asset type id must be positive",
		}
	}

	now := time.Now()
	return &Wallet{
		userID:      userID,
		assetTypeID: assetTypeID,
		balance:     valueobjects.Zero(),
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructWallet reconstructs a Wallet from stored data.
// Used by repository to hydrate entities from database.
func ReconstructWallet(
	id int64,
	userID uuid.UUID,
	assetTypeID int32,
	balance valueobjects.Amount,
	version int64,
	createdAt, updatedAt time.Time,
) *Wallet {
	return &Wallet{
		id:          id,
		userID:      userID,
		assetTypeID: assetTypeID,
		balance:     balance,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Getters

func (w *Wallet) ID() int64 {
	return w.id
}

func (w *Wallet) UserID() uuid.UUID {
	return w.userID
}

func (w *Wallet) AssetTypeID() int32 {
	return w.assetTypeID
}

func (w *Wallet) Balance() valueobjects.Amount {
	return w.balance
}

func (w *Wallet) Version() int64 {
	return w.version
}

func (w *Wallet) CreatedAt() time.Time {
	return w.createdAt
}

func (w *Wallet) UpdatedAt() time.Time {
	return w.updatedAt
}

// IsSystem reports whether this is the system counterparty wallet.
func (w *Wallet) IsSystem() bool {
	return w.userID == SystemUserID
}

// Business Methods

// HasSufficientBalance checks whether the wallet can cover the amount.
// Spending the entire balance (down to exactly zero) is allowed.
func (w *Wallet) HasSufficientBalance(amount valueobjects.Amount) bool {
	return w.balance.GreaterThanOrEqual(amount)
}

// Credit adds funds to the wallet.
//
// Business Rules:
// - Amount must be strictly positive
// - Balance version is incremented (optimistic locking)
func (w *Wallet) Credit(amount valueobjects.Amount) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	w.balance = w.balance.Add(amount)
	w.version++
	w.updatedAt = time.Now()

	return nil
}

// Debit subtracts funds from the wallet.
//
// Business Rules:
// - Amount must be strictly positive
// - The balance must fully cover the amount; the result is never negative
func (w *Wallet) Debit(amount valueobjects.Amount) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	if !w.HasSufficientBalance(amount) {
		return errors.ErrInsufficientFunds
	}

	w.balance = w.balance.Sub(amount)
	w.version++
	w.updatedAt = time.Now()

	return nil
}
