// Package entities - LedgerEntry is the immutable double-entry record.
// Every COMPLETED transaction produces exactly one DEBIT and one CREDIT.
package entities

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// EntrySide marks which side of the double entry a row records.
type EntrySide string

const (
	EntrySideDebit  EntrySide = "DEBIT"
	EntrySideCredit EntrySide = "CREDIT"
)

// IsValid checks if the entry side is valid.
func (s EntrySide) IsValid() bool {
	return s == EntrySideDebit || s == EntrySideCredit
}

// LedgerEntry records one side of a completed transaction against one wallet,
// with the wallet balance snapshotted after the movement. Entries are never
// updated or deleted; a wallet's balance is reconstructible by replaying its
// entries in id order.
type LedgerEntry struct {
	id            int64
	transactionID uuid.UUID
	walletID      int64
	side          EntrySide
	amount        valueobjects.Amount
	balanceAfter  valueobjects.Amount
	createdAt     time.Time
}

// NewLedgerEntry creates a ledger entry for one side of a transaction.
// The store assigns the numeric id on insert.
//
// Business Rules:
// - Side must be DEBIT or CREDIT
// - Amount must be strictly positive
// - The balance snapshot is never negative
func NewLedgerEntry(
	transactionID uuid.UUID,
	walletID int64,
	side EntrySide,
	amount valueobjects.Amount,
	balanceAfter valueobjects.Amount,
) (*LedgerEntry, error) {
	if !side.IsValid() {
		return nil, errors.ValidationError{Field: "side", Message: "side must be DEBIT or CREDIT"}
	}

	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if balanceAfter.IsNegative() {
		return nil, errors.ValidationError{Field: "balance_after", Message: "balance snapshot cannot be negative"}
	}

	return &LedgerEntry{
		transactionID: transactionID,
		walletID:      walletID,
		side:          side,
		amount:        amount,
		balanceAfter:  balanceAfter,
		createdAt:     time.Now(),
	}, nil
}

// ReconstructLedgerEntry reconstructs a LedgerEntry from stored data.
func ReconstructLedgerEntry(
	id int64,
	transactionID uuid.UUID,
	walletID int64,
	side EntrySide,
	amount valueobjects.Amount,
	balanceAfter valueobjects.Amount,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		id:            id,
		transactionID: transactionID,
		walletID:      walletID,
		side:          side,
		amount:        amount,
		balanceAfter:  balanceAfter,
		createdAt:     createdAt,
	}
}

// Getters

func (e *LedgerEntry) ID() int64 {
	return e.id
}

func (e *LedgerEntry) TransactionID() uuid.UUID {
	return e.transactionID
}

func (e *LedgerEntry) WalletID() int64 {
	return e.walletID
}

func (e *LedgerEntry) Side() EntrySide {
	return e.side
}

func (e *LedgerEntry) Amount() valueobjects.Amount {
	return e.amount
}

func (e *LedgerEntry) BalanceAfter() valueobjects.Amount {
	return e.balanceAfter
}

func (e *LedgerEntry) CreatedAt() time.Time {
	return e.createdAt
}

// SignedAmount returns the entry amount with its direction applied:
// negative for DEBIT, positive for CREDIT. Summing signed amounts of a
// wallet's entries yields its balance.
func (e *LedgerEntry) SignedAmount() valueobjects.Amount {
	if e.side == EntrySideDebit {
		return e.amount.Neg()
	}
	return e.amount
}
