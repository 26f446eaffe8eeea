// Package postgres - WalletRepository with lazy creation and row locking.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.WalletRepository = (*WalletRepository)(nil)

// WalletRepository implements ports.WalletRepository.
//
// Balances are NUMERIC(20,2) and cross the wire as text so no float ever
// touches an amount. The version column backs the optimistic check in
// UpdateBalance on top of the row locks.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates the repository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// EnsureExists creates a zero-balance wallet if none exists for the pair.
// ON CONFLICT DO NOTHING makes concurrent first-touch creation race-safe:
// losers are silent no-ops.
func (r *WalletRepository) EnsureExists(ctx context.Context, userID uuid.UUID, assetTypeID int32) error {
	q := querierFrom(ctx, r.pool)

	query := `
		INSERT INTO wallets (user_id, asset_type_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, 0, 1, now(), now())
		ON CONFLICT (user_id, asset_type_id) DO NOTHING
	`

	if _, err := q.Exec(ctx, query, userID, assetTypeID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("asset type %d: %w", assetTypeID, domainErrors.ErrUnknownAssetType)
		}
		return fmt.Errorf("ensure wallet exists: %w", mapStoreError(err))
	}

	return nil
}

// FindForUpdate loads a wallet and takes its row lock. The caller is
// responsible for lock ordering; waits are bounded by lock_timeout.
func (r *WalletRepository) FindForUpdate(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, user_id, asset_type_id, balance::text, version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND asset_type_id = $2
		FOR UPDATE
	`

	return r.scanWallet(q.QueryRow(ctx, query, userID, assetTypeID))
}

// FindByUserAndAsset loads a wallet without locking.
func (r *WalletRepository) FindByUserAndAsset(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, user_id, asset_type_id, balance::text, version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND asset_type_id = $2
	`

	return r.scanWallet(q.QueryRow(ctx, query, userID, assetTypeID))
}

// UpdateBalance persists the balance and bumped version. The entity has
// already incremented its version, so the expected stored version is one
// less; zero rows affected means the row moved under us.
func (r *WalletRepository) UpdateBalance(ctx context.Context, wallet *entities.Wallet) error {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE wallets
		SET balance = $2::numeric, version = $3, updated_at = $4
		WHERE id = $1 AND version = $5
	`

	result, err := q.Exec(ctx, query,
		wallet.ID(),
		wallet.Balance().String(),
		wallet.Version(),
		wallet.UpdatedAt(),
		wallet.Version()-1,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("wallet %d balance check: %w", wallet.ID(), domainErrors.ErrInsufficientFunds)
		}
		return fmt.Errorf("update wallet balance: %w", mapStoreError(err))
	}

	if result.RowsAffected() == 0 {
		// Should not happen while the row lock is held.
		return fmt.Errorf("wallet %d version moved concurrently: %w", wallet.ID(), domainErrors.ErrTransient)
	}

	return nil
}

func (r *WalletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id          int64
		userID      uuid.UUID
		assetTypeID int32
		balanceStr  string
		version     int64
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &userID, &assetTypeID, &balanceStr, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("scan wallet: %w", mapStoreError(err))
	}

	balance, err := valueobjects.NewAmount(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q in store: %w", balanceStr, err)
	}

	return entities.ReconstructWallet(id, userID, assetTypeID, balance, version, createdAt, updatedAt), nil
}
