// Package postgres - LedgerEntryRepository for the append-only ledger.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.LedgerEntryRepository = (*LedgerEntryRepository)(nil)

// LedgerEntryRepository implements ports.LedgerEntryRepository.
// Entries are insert-only; there is no update or delete path.
type LedgerEntryRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerEntryRepository creates the repository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return &LedgerEntryRepository{pool: pool}
}

// Insert appends one ledger entry.
func (r *LedgerEntryRepository) Insert(ctx context.Context, entry *entities.LedgerEntry) error {
	q := querierFrom(ctx, r.pool)

	query := `
		INSERT INTO ledger_entries (transaction_id, wallet_id, side, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
	`

	_, err := q.Exec(ctx, query,
		entry.TransactionID(),
		entry.WalletID(),
		string(entry.Side()),
		entry.Amount().String(),
		entry.BalanceAfter().String(),
		entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", mapStoreError(err))
	}

	return nil
}

// ListByWallet returns a wallet's entries in insertion order.
func (r *LedgerEntryRepository) ListByWallet(ctx context.Context, walletID int64) ([]*entities.LedgerEntry, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, transaction_id, wallet_id, side, amount::text, balance_after::text, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY id ASC
	`

	rows, err := q.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", mapStoreError(err))
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var (
			id              int64
			transactionID   uuid.UUID
			entryWalletID   int64
			sideStr         string
			amountStr       string
			balanceAfterStr string
			createdAt       time.Time
		)
		if err := rows.Scan(&id, &transactionID, &entryWalletID, &sideStr, &amountStr, &balanceAfterStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry row: %w", err)
		}

		amount, err := valueobjects.NewAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid entry amount %q in store: %w", amountStr, err)
		}
		balanceAfter, err := valueobjects.NewAmount(balanceAfterStr)
		if err != nil {
			return nil, fmt.Errorf("invalid balance snapshot %q in store: %w", balanceAfterStr, err)
		}

		entries = append(entries, entities.ReconstructLedgerEntry(
			id, transactionID, entryWalletID, entities.EntrySide(sideStr), amount, balanceAfter, createdAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entry rows: %w", mapStoreError(err))
	}

	return entries, nil
}

// SumByWallet folds a wallet's entries into its replayed balance: credits
// minus debits. Reconciliation compares this against the wallet row.
func (r *LedgerEntryRepository) SumByWallet(ctx context.Context, walletID int64) (valueobjects.Amount, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT COALESCE(SUM(CASE WHEN side = 'CREDIT' THEN amount ELSE -amount END), 0)::text
		FROM ledger_entries
		WHERE wallet_id = $1
	`

	var sumStr string
	if err := q.QueryRow(ctx, query, walletID).Scan(&sumStr); err != nil {
		return valueobjects.Zero(), fmt.Errorf("sum ledger entries: %w", mapStoreError(err))
	}

	sum, err := valueobjects.NewAmount(sumStr)
	if err != nil {
		return valueobjects.Zero(), fmt.Errorf("invalid ledger sum %q: %w", sumStr, err)
	}

	return sum, nil
}
