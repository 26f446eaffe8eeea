// Package postgres - UnitOfWork draws the transaction boundary for ledger
// operations.
//
// Every transaction starts with session guardrails:
//
//	SET LOCAL lock_timeout       -- bound waits on advisory and row locks
//	SET LOCAL statement_timeout  -- bound individual statements
//
// Both timeouts surface as transient errors, so a stuck operation fails the
// single request instead of pinning a pool connection.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
)

// Compile-time check
var _ ports.UnitOfWork = (*UnitOfWork)(nil)

const (
	defaultLockTimeout      = 5 * time.Second
	defaultStatementTimeout = 10 * time.Second
)

// UnitOfWork implements ports.UnitOfWork on pgx transactions.
//
// Isolation is READ COMMITTED; correctness comes from advisory locks and
// ordered row locks, not from a stricter isolation level.
type UnitOfWork struct {
	pool             *pgxpool.Pool
	opts             pgx.TxOptions
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// NewUnitOfWork creates a UnitOfWork with the default guardrail timeouts.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return NewUnitOfWorkWithTimeouts(pool, defaultLockTimeout, defaultStatementTimeout)
}

// NewUnitOfWorkWithTimeouts creates a UnitOfWork with explicit guardrails.
func NewUnitOfWorkWithTimeouts(pool *pgxpool.Pool, lockTimeout, statementTimeout time.Duration) *UnitOfWork {
	return &UnitOfWork{
		pool:             pool,
		opts:             pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		lockTimeout:      lockTimeout,
		statementTimeout: statementTimeout,
	}
}

// Execute runs fn inside a transaction.
//
// Behavior:
// - fn returns nil: COMMIT
// - fn returns an error: ROLLBACK, the error is returned mapped
// - fn panics: ROLLBACK, then re-panic
//
// Nested calls reuse the transaction already in the context.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	if hasTx(ctx) {
		return fn(ctx)
	}

	tx, err := u.pool.BeginTx(ctx, u.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapStoreError(err))
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := u.applyGuardrails(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := fn(injectTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return mapStoreError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapStoreError(err))
	}

	return nil
}

// ExecuteWithResult runs fn inside a transaction and returns its result.
func (u *UnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var result interface{}

	err := u.Execute(ctx, func(txCtx context.Context) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// applyGuardrails sets the per-transaction timeouts. SET LOCAL reverts at
// transaction end, so the pool connection comes back clean.
func (u *UnitOfWork) applyGuardrails(ctx context.Context, tx pgx.Tx) error {
	// Timeout values cannot be bind parameters; they are formatted from
	// trusted durations, never from request input.
	stmt := fmt.Sprintf(
		"SET LOCAL lock_timeout = '%dms'; SET LOCAL statement_timeout = '%dms'",
		u.lockTimeout.Milliseconds(),
		u.statementTimeout.Milliseconds(),
	)
	if _, err := tx.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply session guardrails: %w", mapStoreError(err))
	}
	return nil
}
