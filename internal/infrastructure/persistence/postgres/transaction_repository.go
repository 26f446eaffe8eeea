// Package postgres - TransactionRepository with the idempotency claim.
package postgres

import (
	"context"
	"encoding/json"
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
var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository implements ports.TransactionRepository.
//
// The unique index on idempotency_key makes Insert the idempotency claim:
// a constraint hit means another request holds the key.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates the repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Insert writes a new PENDING transaction.
func (r *TransactionRepository) Insert(ctx context.Context, tx *entities.Transaction) error {
	q := querierFrom(ctx, r.pool)

	metadataJSON, err := json.Marshal(tx.Metadata())
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO transactions (
			id, idempotency_key, kind, status, user_id, asset_type_id,
			amount, metadata, created_at, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
	`

	_, err = q.Exec(ctx, query,
		tx.ID(),
		tx.IdempotencyKey(),
		string(tx.Kind()),
		string(tx.Status()),
		tx.UserID(),
		tx.AssetTypeID(),
		tx.Amount().String(),
		metadataJSON,
		tx.CreatedAt(),
		tx.ProcessedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "transactions_idempotency_key") {
			return fmt.Errorf("key %q already claimed: %w", tx.IdempotencyKey(), domainErrors.ErrIdempotencyConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("asset type %d: %w", tx.AssetTypeID(), domainErrors.ErrUnknownAssetType)
		}
		return fmt.Errorf("insert transaction: %w", mapStoreError(err))
	}

	return nil
}

// MarkCompleted flips the PENDING row to COMPLETED.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, tx *entities.Transaction) error {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE transactions
		SET status = $2, processed_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`

	result, err := q.Exec(ctx, query, tx.ID(), string(tx.Status()), tx.ProcessedAt())
	if err != nil {
		return fmt.Errorf("mark transaction completed: %w", mapStoreError(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s is not pending: %w", tx.ID(), domainErrors.ErrInternal)
	}

	return nil
}

// FindByIdempotencyKey loads a transaction by its idempotency key.
func (r *TransactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT t.id, t.idempotency_key, t.kind, t.status, t.user_id,
		       t.asset_type_id, t.amount::text, t.metadata, a.code,
		       t.created_at, t.processed_at
		FROM transactions t
		JOIN asset_types a ON a.id = t.asset_type_id
		WHERE t.idempotency_key = $1
	`

	return r.scanTransaction(q.QueryRow(ctx, query, key))
}

// FindByID loads a transaction by id.
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT t.id, t.idempotency_key, t.kind, t.status, t.user_id,
		       t.asset_type_id, t.amount::text, t.metadata, a.code,
		       t.created_at, t.processed_at
		FROM transactions t
		JOIN asset_types a ON a.id = t.asset_type_id
		WHERE t.id = $1
	`

	return r.scanTransaction(q.QueryRow(ctx, query, id))
}

// ListByUser returns the user's transactions newest-first. The index on
// (user_id, created_at DESC) serves this query directly.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT t.id, t.idempotency_key, t.kind, t.status, t.user_id,
		       t.asset_type_id, t.amount::text, t.metadata, a.code,
		       t.created_at, t.processed_at
		FROM transactions t
		JOIN asset_types a ON a.id = t.asset_type_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", mapStoreError(err))
	}
	defer rows.Close()

	var txs []*entities.Transaction
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", mapStoreError(err))
	}

	return txs, nil
}

// CountByUser returns the user's total transaction count.
func (r *TransactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	q := querierFrom(ctx, r.pool)

	var count int64
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM transactions WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", mapStoreError(err))
	}

	return count, nil
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var (
		id             uuid.UUID
		idempotencyKey string
		kindStr        string
		statusStr      string
		userID         uuid.UUID
		assetTypeID    int32
		amountStr      string
		metadataJSON   []byte
		assetCode      string
		createdAt      time.Time
		processedAt    *time.Time
	)

	err := row.Scan(
		&id,
		&idempotencyKey,
		&kindStr,
		&statusStr,
		&userID,
		&assetTypeID,
		&amountStr,
		&metadataJSON,
		&assetCode,
		&createdAt,
		&processedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", mapStoreError(err))
	}

	amount, err := valueobjects.NewAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q in store: %w", amountStr, err)
	}

	var metadata map[string]interface{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return entities.ReconstructTransaction(
		id,
		idempotencyKey,
		entities.TransactionKind(kindStr),
		entities.TransactionStatus(statusStr),
		userID,
		assetTypeID,
		amount,
		metadata,
		assetCode,
		createdAt,
		processedAt,
	), nil
}
