package ledger

import (
	"context"
	"time"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/events"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// Mock WalletRepository
type mockWalletRepo struct {
	ensureExistsFunc       func(ctx context.Context, userID uuid.UUID, assetTypeID int32) error
	findForUpdateFunc      func(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error)
	findByUserAndAssetFunc func(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error)
	updateBalanceFunc      func(ctx context.Context, wallet *entities.Wallet) error
}

func (m *mockWalletRepo) EnsureExists(ctx context.Context, userID uuid.UUID, assetTypeID int32) error {
	if m.ensureExistsFunc != nil {
		return m.ensureExistsFunc(ctx, userID, assetTypeID)
	}
	return nil
}

func (m *mockWalletRepo) FindForUpdate(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	if m.findForUpdateFunc != nil {
		return m.findForUpdateFunc(ctx, userID, assetTypeID)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockWalletRepo) FindByUserAndAsset(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	if m.findByUserAndAssetFunc != nil {
		return m.findByUserAndAssetFunc(ctx, userID, assetTypeID)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockWalletRepo) UpdateBalance(ctx context.Context, wallet *entities.Wallet) error {
	if m.updateBalanceFunc != nil {
		return m.updateBalanceFunc(ctx, wallet)
	}
	return nil
}

// Mock TransactionRepository
type mockTransactionRepo struct {
	insertFunc        func(ctx context.Context, tx *entities.Transaction) error
	markCompletedFunc func(ctx context.Context, tx *entities.Transaction) error
	findByKeyFunc     func(ctx context.Context, key string) (*entities.Transaction, error)
	listByUserFunc    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)
	countByUserFunc   func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (m *mockTransactionRepo) Insert(ctx context.Context, tx *entities.Transaction) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, tx)
	}
	return nil
}

func (m *mockTransactionRepo) MarkCompleted(ctx context.Context, tx *entities.Transaction) error {
	if m.markCompletedFunc != nil {
		return m.markCompletedFunc(ctx, tx)
	}
	return nil
}

func (m *mockTransactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
	if m.findByKeyFunc != nil {
		return m.findByKeyFunc(ctx, key)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockTransactionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

// Mock LedgerEntryRepository
type mockLedgerEntryRepo struct {
	insertFunc func(ctx context.Context, entry *entities.LedgerEntry) error
}

func (m *mockLedgerEntryRepo) Insert(ctx context.Context, entry *entities.LedgerEntry) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, entry)
	}
	return nil
}

func (m *mockLedgerEntryRepo) ListByWallet(ctx context.Context, walletID int64) ([]*entities.LedgerEntry, error) {
	return nil, nil
}

func (m *mockLedgerEntryRepo) SumByWallet(ctx context.Context, walletID int64) (valueobjects.Amount, error) {
	return valueobjects.Zero(), nil
}

// Mock AdvisoryLocker
type mockLocker struct {
	acquireFunc func(ctx context.Context, key int64) error
	acquired    []int64
}

func (m *mockLocker) AcquireTxLock(ctx context.Context, key int64) error {
	m.acquired = append(m.acquired, key)
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, key)
	}
	return nil
}

// Mock OutboxRepository
type mockOutbox struct {
	saveFunc func(ctx context.Context, event events.DomainEvent) error
	saved    []events.DomainEvent
}

func (m *mockOutbox) Save(ctx context.Context, event events.DomainEvent) error {
	m.saved = append(m.saved, event)
	if m.saveFunc != nil {
		return m.saveFunc(ctx, event)
	}
	return nil
}

func (m *mockOutbox) FindUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	return nil, nil
}

func (m *mockOutbox) MarkPublished(ctx context.Context, messageID uuid.UUID) error {
	return nil
}

func (m *mockOutbox) MarkFailed(ctx context.Context, messageID uuid.UUID, reason string) error {
	return nil
}

// Mock UnitOfWork that runs the callback inline, without a real transaction.
type mockUnitOfWork struct{}

func (m *mockUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (m *mockUnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

// Mock AssetTypeRepository
type mockAssetRepo struct {
	findByIdentifierFunc func(ctx context.Context, identifier string) (*entities.AssetType, error)
}

func (m *mockAssetRepo) FindByID(ctx context.Context, id int32) (*entities.AssetType, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockAssetRepo) FindByIdentifier(ctx context.Context, identifier string) (*entities.AssetType, error) {
	if m.findByIdentifierFunc != nil {
		return m.findByIdentifierFunc(ctx, identifier)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockAssetRepo) List(ctx context.Context) ([]*entities.AssetType, error) {
	return nil, nil
}

// testAsset is the catalog entry used throughout the package tests.
func testAsset() *entities.AssetType {
	return entities.ReconstructAssetType(1, "Gold", "GOLD", time.Now())
}

// compile-time interface checks for the mocks
var (
	_ ports.WalletRepository      = (*mockWalletRepo)(nil)
	_ ports.TransactionRepository = (*mockTransactionRepo)(nil)
	_ ports.LedgerEntryRepository = (*mockLedgerEntryRepo)(nil)
	_ ports.AdvisoryLocker        = (*mockLocker)(nil)
	_ ports.OutboxRepository      = (*mockOutbox)(nil)
	_ ports.UnitOfWork            = (*mockUnitOfWork)(nil)
	_ ports.AssetTypeRepository   = (*mockAssetRepo)(nil)
)
