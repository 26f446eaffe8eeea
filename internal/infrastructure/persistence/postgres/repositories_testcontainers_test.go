// Package postgres - integration tests for the PostgreSQL repositories,
// backed by testcontainers.
//
// Running:
//
//	go test ./internal/infrastructure/persistence/postgres/...
//
// Requires a running Docker daemon.
package postgres

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/events"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
)

// ============================================
// Test Helpers
// ============================================

type testContainer struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
}

// Shared container for all tests in the package.
var sharedTestContainer *testContainer

// setupSharedTestDB starts (or reuses) one PostgreSQL container with the
// real migrations applied, and wipes mutable state between tests.
func setupSharedTestDB(t *testing.T) *testContainer {
	t.Helper()

	if sharedTestContainer != nil {
		cleanupTables(t, sharedTestContainer.pool)
		return sharedTestContainer
	}

	ctx := context.Background()

	migrationsPath := filepath.Join("..", "..", "..", "..", "migrations")

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "000001_create_asset_types.up.sql"),
			filepath.Join(migrationsPath, "000002_create_wallets.up.sql"),
			filepath.Join(migrationsPath, "000003_create_transactions.up.sql"),
			filepath.Join(migrationsPath, "000004_create_ledger_entries.up.sql"),
			filepath.Join(migrationsPath, "000005_create_outbox.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	sharedTestContainer = &testContainer{container: container, pool: pool}
	return sharedTestContainer
}

// cleanupTables resets mutable state: ledger, transactions, outbox and user
// wallets go away; the seeded catalog stays and the system wallets are
// restored to their opening balance.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	stmts := []string{
		"TRUNCATE TABLE ledger_entries, outbox CASCADE",
		"TRUNCATE TABLE transactions CASCADE",
		fmt.Sprintf("DELETE FROM wallets WHERE user_id <> '%s'", entities.SystemUserID),
		fmt.Sprintf("UPDATE wallets SET balance = 1000000000.00, version = 1 WHERE user_id = '%s'", entities.SystemUserID),
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Logf("Warning: cleanup %q: %v", stmt, err)
		}
	}
}

// goldAssetID resolves the seeded GOLD asset.
func goldAssetID(t *testing.T, tc *testContainer) int32 {
	t.Helper()
	asset, err := NewAssetTypeRepository(tc.pool).FindByIdentifier(context.Background(), "GOLD")
	require.NoError(t, err)
	return asset.ID()
}

func mustAmount(t *testing.T, s string) valueobjects.Amount {
	t.Helper()
	amount, err := valueobjects.NewAmount(s)
	require.NoError(t, err)
	return amount
}

// ============================================
// AssetTypeRepository Tests
// ============================================

func TestAssetTypeRepository_Integration(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewAssetTypeRepository(tc.pool)
	ctx := context.Background()

	t.Run("FindByCode", func(t *testing.T) {
		asset, err := repo.FindByIdentifier(ctx, "GOLD")

		require.NoError(t, err)
		assert.Equal(t, "GOLD", asset.Code())
		assert.Equal(t, "Gold", asset.Name())
	})

	t.Run("FindByName", func(t *testing.T) {
		asset, err := repo.FindByIdentifier(ctx, "Loyalty Points")

		require.NoError(t, err)
		assert.Equal(t, "LOYALTY", asset.Code())
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		_, err := repo.FindByIdentifier(ctx, "gold")

		assert.True(t, domainErrors.IsNotFound(err))
	})

	t.Run("FindByID", func(t *testing.T) {
		byCode, err := repo.FindByIdentifier(ctx, "DIAMOND")
		require.NoError(t, err)

		byID, err := repo.FindByID(ctx, byCode.ID())
		require.NoError(t, err)
		assert.Equal(t, "DIAMOND", byID.Code())
	})

	t.Run("List", func(t *testing.T) {
		assets, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, assets, 3)
		assert.Equal(t, "GOLD", assets[0].Code())
	})
}

// ============================================
// WalletRepository Tests
// ============================================

func TestWalletRepository_Integration_EnsureExists(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewWalletRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	t.Run("CreatesZeroBalanceWallet", func(t *testing.T) {
		require.NoError(t, repo.EnsureExists(ctx, userID, assetID))

		wallet, err := repo.FindByUserAndAsset(ctx, userID, assetID)
		require.NoError(t, err)
		assert.Equal(t, "0.00", wallet.Balance().String())
		assert.Equal(t, int64(1), wallet.Version())
	})

	t.Run("SecondCallIsNoOp", func(t *testing.T) {
		require.NoError(t, repo.EnsureExists(ctx, userID, assetID))

		wallet, err := repo.FindByUserAndAsset(ctx, userID, assetID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), wallet.Version())
	})

	t.Run("UnknownAssetType", func(t *testing.T) {
		err := repo.EnsureExists(ctx, uuid.New(), 9999)

		assert.True(t, domainErrors.IsInvalidArgument(err))
	})
}

func TestWalletRepository_Integration_UpdateBalance(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewWalletRepository(tc.pool)
	uow := NewUnitOfWork(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	require.NoError(t, repo.EnsureExists(ctx, userID, assetID))

	err := uow.Execute(ctx, func(txCtx context.Context) error {
		wallet, err := repo.FindForUpdate(txCtx, userID, assetID)
		if err != nil {
			return err
		}
		if err := wallet.Credit(mustAmount(t, "250.75")); err != nil {
			return err
		}
		return repo.UpdateBalance(txCtx, wallet)
	})
	require.NoError(t, err)

	wallet, err := repo.FindByUserAndAsset(ctx, userID, assetID)
	require.NoError(t, err)
	assert.Equal(t, "250.75", wallet.Balance().String())
	assert.Equal(t, int64(2), wallet.Version())
}

func TestWalletRepository_Integration_NonNegativeConstraint(t *testing.T) {
	tc := setupSharedTestDB(t)

	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	require.NoError(t, NewWalletRepository(tc.pool).EnsureExists(ctx, userID, assetID))

	// Bypass the entity and hit the CHECK constraint directly.
	_, err := tc.pool.Exec(ctx,
		"UPDATE wallets SET balance = -1 WHERE user_id = $1 AND asset_type_id = $2",
		userID, assetID,
	)
	assert.Error(t, err)
}

// ============================================
// TransactionRepository Tests
// ============================================

func TestTransactionRepository_Integration_Insert(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewTransactionRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	t.Run("InsertAndFindByKey", func(t *testing.T) {
		tx, err := entities.NewTransaction("it-key-1", entities.TransactionKindTopUp, userID, assetID, mustAmount(t, "10.00"), map[string]interface{}{"source": "test"})
		require.NoError(t, err)

		require.NoError(t, repo.Insert(ctx, tx))

		loaded, err := repo.FindByIdempotencyKey(ctx, "it-key-1")
		require.NoError(t, err)
		assert.Equal(t, tx.ID(), loaded.ID())
		assert.Equal(t, entities.TransactionStatusPending, loaded.Status())
		assert.Equal(t, "GOLD", loaded.AssetCode())
		assert.Equal(t, "test", loaded.Metadata()["source"])
	})

	t.Run("DuplicateKeyIsConflict", func(t *testing.T) {
		dup, err := entities.NewTransaction("it-key-1", entities.TransactionKindSpend, userID, assetID, mustAmount(t, "5.00"), nil)
		require.NoError(t, err)

		err = repo.Insert(ctx, dup)
		assert.True(t, domainErrors.IsIdempotencyConflict(err))
	})

	t.Run("UnclaimedKeyIsNotFound", func(t *testing.T) {
		_, err := repo.FindByIdempotencyKey(ctx, "never-claimed")

		assert.True(t, domainErrors.IsNotFound(err))
	})
}

func TestTransactionRepository_Integration_MarkCompleted(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewTransactionRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)

	tx, err := entities.NewTransaction("it-complete", entities.TransactionKindTopUp, uuid.New(), assetID, mustAmount(t, "10.00"), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, tx))

	require.NoError(t, tx.MarkCompleted())
	require.NoError(t, repo.MarkCompleted(ctx, tx))

	loaded, err := repo.FindByID(ctx, tx.ID())
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, loaded.Status())
	assert.NotNil(t, loaded.ProcessedAt())

	// The transition is one way.
	err = repo.MarkCompleted(ctx, tx)
	assert.Error(t, err)
}

func TestTransactionRepository_Integration_ListByUser(t *testing.T) {
	tc := setupSharedTestDB(t)

	repo := NewTransactionRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		tx, err := entities.NewTransaction(
			fmt.Sprintf("it-list-%d", i),
			entities.TransactionKindTopUp, userID, assetID,
			mustAmount(t, fmt.Sprintf("%d.00", i+1)), nil,
		)
		require.NoError(t, err)
		require.NoError(t, repo.Insert(ctx, tx))
	}

	t.Run("NewestFirstWindow", func(t *testing.T) {
		txs, err := repo.ListByUser(ctx, userID, 3, 0)

		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, "5.00", txs[0].Amount().String())
		assert.Equal(t, "GOLD", txs[0].AssetCode())
		for i := 1; i < len(txs); i++ {
			assert.False(t, txs[i].CreatedAt().After(txs[i-1].CreatedAt()))
		}
	})

	t.Run("Offset", func(t *testing.T) {
		txs, err := repo.ListByUser(ctx, userID, 3, 3)

		require.NoError(t, err)
		require.Len(t, txs, 2)
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.CountByUser(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("OtherUserSeesNothing", func(t *testing.T) {
		txs, err := repo.ListByUser(ctx, uuid.New(), 10, 0)

		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

// ============================================
// LedgerEntryRepository Tests
// ============================================

func TestLedgerEntryRepository_Integration(t *testing.T) {
	tc := setupSharedTestDB(t)

	wallets := NewWalletRepository(tc.pool)
	txRepo := NewTransactionRepository(tc.pool)
	entries := NewLedgerEntryRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)
	userID := uuid.New()

	require.NoError(t, wallets.EnsureExists(ctx, userID, assetID))
	wallet, err := wallets.FindByUserAndAsset(ctx, userID, assetID)
	require.NoError(t, err)

	tx, err := entities.NewTransaction("it-ledger", entities.TransactionKindTopUp, userID, assetID, mustAmount(t, "40.00"), nil)
	require.NoError(t, err)
	require.NoError(t, txRepo.Insert(ctx, tx))

	credit, err := entities.NewLedgerEntry(tx.ID(), wallet.ID(), entities.EntrySideCredit, mustAmount(t, "40.00"), mustAmount(t, "40.00"))
	require.NoError(t, err)
	require.NoError(t, entries.Insert(ctx, credit))

	debit, err := entities.NewLedgerEntry(tx.ID(), wallet.ID(), entities.EntrySideDebit, mustAmount(t, "15.00"), mustAmount(t, "25.00"))
	require.NoError(t, err)
	require.NoError(t, entries.Insert(ctx, debit))

	t.Run("ListInInsertionOrder", func(t *testing.T) {
		list, err := entries.ListByWallet(ctx, wallet.ID())

		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, entities.EntrySideCredit, list[0].Side())
		assert.Equal(t, entities.EntrySideDebit, list[1].Side())
		assert.Equal(t, "25.00", list[1].BalanceAfter().String())
	})

	t.Run("SumIsCreditsMinusDebits", func(t *testing.T) {
		sum, err := entries.SumByWallet(ctx, wallet.ID())

		require.NoError(t, err)
		assert.Equal(t, "25.00", sum.String())
	})

	t.Run("EmptyWalletSumsToZero", func(t *testing.T) {
		sum, err := entries.SumByWallet(ctx, wallet.ID()+1000)

		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

// ============================================
// OutboxRepository Tests
// ============================================

func TestOutboxRepository_Integration(t *testing.T) {
	tc := setupSharedTestDB(t)

	outbox := NewOutboxRepository(tc.pool)
	uow := NewUnitOfWork(tc.pool)
	ctx := context.Background()

	userID := uuid.New()
	event := events.NewWalletCredited(userID, 1, mustAmount(t, "10.00"), uuid.New(), mustAmount(t, "10.00"))

	err := uow.Execute(ctx, func(txCtx context.Context) error {
		return outbox.Save(txCtx, event)
	})
	require.NoError(t, err)

	t.Run("FindUnpublished", func(t *testing.T) {
		messages, err := outbox.FindUnpublished(ctx, 10)

		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, event.EventID(), messages[0].ID)
		assert.Equal(t, "wallet.credited", messages[0].EventType)
		assert.NotEmpty(t, messages[0].Payload)
	})

	t.Run("MarkPublished", func(t *testing.T) {
		require.NoError(t, outbox.MarkPublished(ctx, event.EventID()))

		messages, err := outbox.FindUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, messages)

		// Already published: second mark fails.
		assert.Error(t, outbox.MarkPublished(ctx, event.EventID()))
	})

	t.Run("MarkFailedAndRequeue", func(t *testing.T) {
		failing := events.NewWalletDebited(userID, 1, mustAmount(t, "1.00"), uuid.New(), mustAmount(t, "9.00"))
		require.NoError(t, outbox.Save(ctx, failing))

		require.NoError(t, outbox.MarkFailed(ctx, failing.EventID(), "broker unavailable"))

		messages, err := outbox.FindUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, messages)

		requeued, err := outbox.RequeueFailed(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), requeued)

		messages, err = outbox.FindUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})
}

// ============================================
// UnitOfWork and AdvisoryLocker Tests
// ============================================

func TestUnitOfWork_Integration(t *testing.T) {
	tc := setupSharedTestDB(t)

	uow := NewUnitOfWork(tc.pool)
	wallets := NewWalletRepository(tc.pool)
	ctx := context.Background()
	assetID := goldAssetID(t, tc)

	t.Run("Commit", func(t *testing.T) {
		userID := uuid.New()

		err := uow.Execute(ctx, func(txCtx context.Context) error {
			return wallets.EnsureExists(txCtx, userID, assetID)
		})
		require.NoError(t, err)

		_, err = wallets.FindByUserAndAsset(ctx, userID, assetID)
		assert.NoError(t, err)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		userID := uuid.New()

		err := uow.Execute(ctx, func(txCtx context.Context) error {
			if err := wallets.EnsureExists(txCtx, userID, assetID); err != nil {
				return err
			}
			return fmt.Errorf("intentional failure")
		})
		require.Error(t, err)

		_, err = wallets.FindByUserAndAsset(ctx, userID, assetID)
		assert.True(t, domainErrors.IsNotFound(err))
	})

	t.Run("GuardrailsApplied", func(t *testing.T) {
		err := uow.Execute(ctx, func(txCtx context.Context) error {
			q := querierFrom(txCtx, tc.pool)

			var lockTimeout, statementTimeout string
			if err := q.QueryRow(txCtx, "SHOW lock_timeout").Scan(&lockTimeout); err != nil {
				return err
			}
			if err := q.QueryRow(txCtx, "SHOW statement_timeout").Scan(&statementTimeout); err != nil {
				return err
			}

			assert.Equal(t, "5s", lockTimeout)
			assert.Equal(t, "10s", statementTimeout)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestAdvisoryLocker_Integration(t *testing.T) {
	tc := setupSharedTestDB(t)

	locker := NewAdvisoryLocker(tc.pool)
	uow := NewUnitOfWork(tc.pool)
	ctx := context.Background()

	t.Run("RejectedOutsideTransaction", func(t *testing.T) {
		err := locker.AcquireTxLock(ctx, 42)

		assert.Error(t, err)
	})

	t.Run("SerializesHolders", func(t *testing.T) {
		const key = int64(777)
		started := make(chan struct{})
		firstDone := make(chan error, 1)

		go func() {
			firstDone <- uow.Execute(ctx, func(txCtx context.Context) error {
				if err := locker.AcquireTxLock(txCtx, key); err != nil {
					return err
				}
				close(started)
				time.Sleep(200 * time.Millisecond)
				return nil
			})
		}()

		<-started
		// Blocks until the first holder commits; lock_timeout bounds the wait.
		err := uow.Execute(ctx, func(txCtx context.Context) error {
			return locker.AcquireTxLock(txCtx, key)
		})

		require.NoError(t, err)
		require.NoError(t, <-firstDone)
	})
}
