// Package ports defines the interfaces (ports) the application layer depends
// on. The Infrastructure Layer provides the implementations.
//
// SOLID Principles:
// - DIP: Application depends on abstractions, not concrete implementations
// - ISP: Each interface focuses on one entity
// - SRP: Repositories are responsible for persistence only
//
// Pattern: Repository Pattern + Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"

	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// AssetTypeRepository is the contract for the asset-type catalog.
// The catalog is seeded by migrations and effectively read-only at runtime.
type AssetTypeRepository interface {
	// FindByID loads an asset type by its numeric id.
	// Returns ErrEntityNotFound when the id is unknown.
	FindByID(ctx context.Context, id int32) (*entities.AssetType, error)

	// FindByIdentifier resolves an asset type by name OR code.
	// The match is exact and case-sensitive: "gold" does not resolve "GOLD".
	FindByIdentifier(ctx context.Context, identifier string) (*entities.AssetType, error)

	// List returns the full catalog ordered by id.
	List(ctx context.Context) ([]*entities.AssetType, error)
}

// WalletRepository is the contract for wallet storage.
//
// Wallets are created lazily: EnsureExists is an idempotent, race-safe upsert
// executed before row locks are taken.
type WalletRepository interface {
	// EnsureExists creates a zero-balance wallet for (userID, assetTypeID)
	// if none exists yet. Concurrent calls are safe; losers are no-ops.
	EnsureExists(ctx context.Context, userID uuid.UUID, assetTypeID int32) error

	// FindForUpdate loads a wallet and takes its row lock (SELECT FOR UPDATE).
	// Must run inside a unit-of-work transaction.
	FindForUpdate(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error)

	// FindByUserAndAsset loads a wallet without locking.
	// Returns ErrEntityNotFound when the user has no wallet for the asset.
	FindByUserAndAsset(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error)

	// UpdateBalance persists a wallet's balance and bumped version.
	// The row is expected to be locked by the caller.
	UpdateBalance(ctx context.Context, wallet *entities.Wallet) error
}

// TransactionRepository is the contract for transaction storage.
type TransactionRepository interface {
	// Insert writes a new PENDING transaction. A unique-constraint hit on
	// the idempotency key is surfaced as ErrIdempotencyConflict.
	Insert(ctx context.Context, tx *entities.Transaction) error

	// MarkCompleted flips a PENDING row to COMPLETED and stamps processed_at.
	MarkCompleted(ctx context.Context, tx *entities.Transaction) error

	// FindByIdempotencyKey loads a transaction by its idempotency key.
	// Returns ErrEntityNotFound when the key was never claimed.
	FindByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error)

	// FindByID loads a transaction by id.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// ListByUser returns the user's transactions newest-first with the asset
	// code joined in, paginated by limit/offset.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)

	// CountByUser returns the total number of the user's transactions,
	// for pagination metadata.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// LedgerEntryRepository is the contract for the append-only ledger.
type LedgerEntryRepository interface {
	// Insert appends one ledger entry. Entries are immutable once written.
	Insert(ctx context.Context, entry *entities.LedgerEntry) error

	// ListByWallet returns a wallet's entries in insertion order.
	ListByWallet(ctx context.Context, walletID int64) ([]*entities.LedgerEntry, error)

	// SumByWallet folds a wallet's entries into a balance (credits minus
	// debits). Used by reconciliation to cross-check the wallet row.
	SumByWallet(ctx context.Context, walletID int64) (valueobjects.Amount, error)
}

// AdvisoryLocker serializes ledger operations on a (participants, asset)
// scope before any row locks are taken.
type AdvisoryLocker interface {
	// AcquireTxLock blocks until the transaction-scoped advisory lock for
	// key is held. The lock is released automatically at commit/rollback.
	// Must run inside a unit-of-work transaction.
	AcquireTxLock(ctx context.Context, key int64) error
}
