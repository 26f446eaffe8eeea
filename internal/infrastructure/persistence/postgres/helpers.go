// Package postgres implements the persistence ports on PostgreSQL.
//
// Patterns:
// - Repository Pattern: one file per aggregate
// - Unit of Work: transaction boundaries with tx-in-context
// - Transaction-scoped advisory locks for operation serialization
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
)

// querier is the common subset of pgx.Tx and pgxpool.Pool the repositories
// need. Repositories run against the transaction when one is in the context,
// and against the pool otherwise.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey is the context key holding the active transaction.
type txKey struct{}

// injectTx puts a transaction into the context for the repositories.
func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// extractTx returns the transaction from the context, or nil.
func extractTx(ctx context.Context) pgx.Tx {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// hasTx reports whether the context carries a transaction.
func hasTx(ctx context.Context) bool {
	return extractTx(ctx) != nil
}

// querierFrom picks the transaction from the context or falls back to pool.
func querierFrom(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// PostgreSQL error codes the repositories care about.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation checks for a UNIQUE constraint hit, optionally on a
// specific constraint name.
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	if constraintName != "" {
		return strings.Contains(pgErr.ConstraintName, constraintName)
	}
	return true
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}

// isTransientError reports whether the failure is safe for the caller to
// retry with the same idempotency key: lock or statement timeouts, deadlocks,
// serialization failures and connection loss (class 08). The session
// guardrails set by the unit of work surface as 55P03 and 57014.
func isTransientError(err error) bool {
	switch code := pgErrorCode(err); code {
	case pgLockNotAvailable, pgQueryCanceled, pgDeadlockDetected, pgSerializationFailure:
		return true
	default:
		return strings.HasPrefix(code, "08")
	}
}

// mapStoreError translates low-level store failures into the domain
// taxonomy. Unique-constraint hits are mapped per call site because their
// meaning depends on the constraint.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if isTransientError(err) {
		return fmt.Errorf("%w: %v", domainErrors.ErrTransient, err)
	}
	return err
}
