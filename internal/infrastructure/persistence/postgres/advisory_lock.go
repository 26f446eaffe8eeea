package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
)

// Compile-time check
var _ ports.AdvisoryLocker = (*AdvisoryLocker)(nil)

// AdvisoryLocker implements ports.AdvisoryLocker on transaction-scoped
// PostgreSQL advisory locks. pg_advisory_xact_lock blocks until the lock is
// granted and releases it automatically at commit or rollback; the
// lock_timeout guardrail bounds the wait.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker creates the locker.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// AcquireTxLock takes the advisory lock for key. Outside a unit-of-work
// transaction the lock would release immediately, so that is rejected.
func (l *AdvisoryLocker) AcquireTxLock(ctx context.Context, key int64) error {
	if !hasTx(ctx) {
		return fmt.Errorf("advisory lock for key %d requested outside a transaction", key)
	}

	q := querierFrom(ctx, l.pool)
	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
		return fmt.Errorf("acquire advisory lock %d: %w", key, mapStoreError(err))
	}
	return nil
}
