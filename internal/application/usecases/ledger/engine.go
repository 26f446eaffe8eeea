// Package ledger - Engine executes every balance movement in the system.
//
// Each operation is one store transaction that serializes on an advisory
// lock, passes the idempotency gate, moves value between exactly two wallets
// and records a matched DEBIT/CREDIT pair of ledger entries.
package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/events"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// request describes one movement between a user and the system wallet.
type request struct {
	idempotencyKey string
	kind           entities.TransactionKind
	userID         uuid.UUID
	asset          *entities.AssetType
	amount         valueobjects.Amount
	metadata       map[string]interface{}
}

// result is the outcome of an engine run.
type result struct {
	tx       *entities.Transaction
	replayed bool
}

// Engine coordinates wallets, transactions and the ledger inside one
// unit-of-work transaction per operation.
type Engine struct {
	wallets      ports.WalletRepository
	transactions ports.TransactionRepository
	entries      ports.LedgerEntryRepository
	locker       ports.AdvisoryLocker
	outbox       ports.OutboxRepository
	uow          ports.UnitOfWork
	logger       *slog.Logger
}

// NewEngine creates the ledger engine.
func NewEngine(
	wallets ports.WalletRepository,
	transactions ports.TransactionRepository,
	entries ports.LedgerEntryRepository,
	locker ports.AdvisoryLocker,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		entries:      entries,
		locker:       locker,
		outbox:       outbox,
		uow:          uow,
		logger:       logger,
	}
}

// run executes one movement. All failures roll the store transaction back;
// the only observable outcomes are "COMPLETED record exists" and "nothing
// changed".
func (e *Engine) run(ctx context.Context, req request) (*result, error) {
	if req.idempotencyKey == "" {
		return nil, errors.ErrMissingKey
	}
	if !req.amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if req.userID == entities.SystemUserID {
		return nil, errors.ValidationError{Field: "user_id", Message: "the system user cannot be a caller"}
	}

	// SPEND debits the user; TOP_UP and BONUS debit the system wallet.
	debitUser := entities.SystemUserID
	creditUser := req.userID
	if req.kind.IsDebitFromUser() {
		debitUser, creditUser = req.userID, entities.SystemUserID
	}

	out, err := e.uow.ExecuteWithResult(ctx, func(txCtx context.Context) (interface{}, error) {
		// 1. Serialize on the operation scope before touching any rows.
		if err := e.locker.AcquireTxLock(txCtx, lockKey(req.asset.ID(), req.userID, entities.SystemUserID)); err != nil {
			return nil, fmt.Errorf("acquire advisory lock: %w", err)
		}

		// 2. Idempotency gate: check-and-claim under the advisory lock.
		existing, err := e.transactions.FindByIdempotencyKey(txCtx, req.idempotencyKey)
		if err != nil && !errors.IsNotFound(err) {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
		if existing != nil {
			if existing.IsCompleted() {
				// Replay: return the cached record, touch nothing.
				return &result{tx: existing, replayed: true}, nil
			}
			// A PENDING claim means another request is in flight; a FAILED
			// one is unresolved. Both are conflicts, not replays.
			return nil, fmt.Errorf("key %q is %s: %w",
				req.idempotencyKey, existing.Status(), errors.ErrIdempotencyConflict)
		}

		// 3. Ensure both wallets exist, in ascending user_id order so
		// concurrent first-touch upserts cannot deadlock.
		for _, userID := range orderUsers(debitUser, creditUser) {
			if err := e.wallets.EnsureExists(txCtx, userID, req.asset.ID()); err != nil {
				return nil, fmt.Errorf("ensure wallet for %s: %w", userID, err)
			}
		}

		// 4. Lock both wallet rows, same global order.
		locked := make(map[uuid.UUID]*entities.Wallet, 2)
		for _, userID := range orderUsers(debitUser, creditUser) {
			w, err := e.wallets.FindForUpdate(txCtx, userID, req.asset.ID())
			if err != nil {
				return nil, fmt.Errorf("lock wallet for %s: %w", userID, err)
			}
			locked[userID] = w
		}
		debitWallet, creditWallet := locked[debitUser], locked[creditUser]

		// 5. Funds check before any mutation.
		if !debitWallet.HasSufficientBalance(req.amount) {
			return nil, fmt.Errorf("wallet of %s holds %s, needs %s: %w",
				debitUser, debitWallet.Balance(), req.amount, errors.ErrInsufficientFunds)
		}

		// 6. Claim the key with a PENDING row. A unique-constraint loss here
		// means a racer claimed it between gate and insert; the repository
		// maps that to ErrIdempotencyConflict.
		tx, err := entities.NewTransaction(req.idempotencyKey, req.kind, req.userID, req.asset.ID(), req.amount, req.metadata)
		if err != nil {
			return nil, err
		}
		if err := e.transactions.Insert(txCtx, tx); err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}

		// 7. Debit side: balance update plus ledger entry with snapshot.
		if err := e.applySide(txCtx, tx.ID(), debitWallet, entities.EntrySideDebit, req.amount); err != nil {
			return nil, err
		}

		// 8. Credit side.
		if err := e.applySide(txCtx, tx.ID(), creditWallet, entities.EntrySideCredit, req.amount); err != nil {
			return nil, err
		}

		// 9. Finalize within the same store transaction; no observable
		// PENDING state survives a successful run.
		if err := tx.MarkCompleted(); err != nil {
			return nil, err
		}
		if err := e.transactions.MarkCompleted(txCtx, tx); err != nil {
			return nil, fmt.Errorf("complete transaction: %w", err)
		}

		// 10. Queue events atomically with the movement.
		userWallet := creditWallet
		if req.kind.IsDebitFromUser() {
			userWallet = debitWallet
		}
		if err := e.queueEvents(txCtx, tx, req, userWallet); err != nil {
			return nil, fmt.Errorf("queue outbox events: %w", err)
		}

		return &result{tx: tx}, nil
	})
	if err != nil {
		return nil, err
	}

	res := out.(*result)
	e.logger.InfoContext(ctx, "ledger operation finished",
		slog.String("kind", string(req.kind)),
		slog.String("asset", req.asset.Code()),
		slog.String("user_id", req.userID.String()),
		slog.String("amount", req.amount.String()),
		slog.Bool("replayed", res.replayed),
	)
	return res, nil
}

// applySide updates one wallet and appends its ledger entry.
func (e *Engine) applySide(
	ctx context.Context,
	txID uuid.UUID,
	wallet *entities.Wallet,
	side entities.EntrySide,
	amount valueobjects.Amount,
) error {
	var err error
	if side == entities.EntrySideDebit {
		err = wallet.Debit(amount)
	} else {
		err = wallet.Credit(amount)
	}
	if err != nil {
		return err
	}

	if err := e.wallets.UpdateBalance(ctx, wallet); err != nil {
		return fmt.Errorf("update %s wallet balance: %w", side, err)
	}

	entry, err := entities.NewLedgerEntry(txID, wallet.ID(), side, amount, wallet.Balance())
	if err != nil {
		return err
	}
	if err := e.entries.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert %s ledger entry: %w", side, err)
	}
	return nil
}

// queueEvents saves the operation's domain events to the outbox.
func (e *Engine) queueEvents(ctx context.Context, tx *entities.Transaction, req request, userWallet *entities.Wallet) error {
	var walletEvent events.DomainEvent
	if req.kind.IsDebitFromUser() {
		walletEvent = events.NewWalletDebited(req.userID, req.asset.ID(), req.amount, tx.ID(), userWallet.Balance())
	} else {
		walletEvent = events.NewWalletCredited(req.userID, req.asset.ID(), req.amount, tx.ID(), userWallet.Balance())
	}

	for _, ev := range []events.DomainEvent{
		walletEvent,
		events.NewTransactionCompleted(tx.ID(), req.userID, string(req.kind), req.asset.Code(), req.amount),
	} {
		if err := e.outbox.Save(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// orderUsers returns the two participants in ascending user_id order.
// All engine code takes wallet locks in this global order.
func orderUsers(a, b uuid.UUID) []uuid.UUID {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return []uuid.UUID{a, b}
	}
	return []uuid.UUID{b, a}
}
