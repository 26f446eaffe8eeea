// Package ports - UnitOfWork pattern for transaction management.
//
// SOLID Principles:
// - SRP: UnitOfWork is responsible only for transaction boundaries
// - DIP: Application knows nothing about database transaction details
//
// Pattern: Unit of Work
// - One UnitOfWork execution = one store transaction
// - Automatic rollback on error
package ports

import "context"

// UnitOfWork is the contract for transaction management.
//
// The implementation applies the session guardrails (lock_timeout,
// statement_timeout) to every transaction it opens, so a stuck lock or a
// runaway statement aborts the transaction instead of hanging the pool.
//
// Usage:
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//	    // use txCtx, not ctx - it carries the transaction
//	    wallet, err := walletRepo.FindForUpdate(txCtx, userID, assetID)
//	    if err != nil {
//	        return err // automatic rollback
//	    }
//	    return walletRepo.UpdateBalance(txCtx, wallet)
//	})
type UnitOfWork interface {
	// Execute runs fn inside a transaction.
	//
	// Behaviour:
	// - begins a transaction and applies session guardrails
	// - runs fn with a context carrying the transaction
	// - fn returns error: ROLLBACK; fn returns nil: COMMIT
	Execute(ctx context.Context, fn func(context.Context) error) error

	// ExecuteWithResult is Execute returning a value alongside the error.
	// Useful when the transaction produces an entity the caller needs.
	ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error)
}
