package query

import (
	"context"
	"time"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// Mock AssetTypeRepository
type mockAssetRepo struct {
	findByIdentifierFunc func(ctx context.Context, identifier string) (*entities.AssetType, error)
	listFunc             func(ctx context.Context) ([]*entities.AssetType, error)
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
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

// Mock WalletRepository
type mockWalletRepo struct {
	findByUserAndAssetFunc func(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error)
}

func (m *mockWalletRepo) EnsureExists(ctx context.Context, userID uuid.UUID, assetTypeID int32) error {
	return nil
}

func (m *mockWalletRepo) FindForUpdate(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockWalletRepo) FindByUserAndAsset(ctx context.Context, userID uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
	if m.findByUserAndAssetFunc != nil {
		return m.findByUserAndAssetFunc(ctx, userID, assetTypeID)
	}
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockWalletRepo) UpdateBalance(ctx context.Context, wallet *entities.Wallet) error {
	return nil
}

// Mock TransactionRepository
type mockTransactionRepo struct {
	listByUserFunc  func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)
	countByUserFunc func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (m *mockTransactionRepo) Insert(ctx context.Context, tx *entities.Transaction) error {
	return nil
}

func (m *mockTransactionRepo) MarkCompleted(ctx context.Context, tx *entities.Transaction) error {
	return nil
}

func (m *mockTransactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
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

// Mock KeyValueCache backed by a plain map.
type mockCache struct {
	entries map[string]string
	sets    int
	hits    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return value, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.entries[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

// goldAsset is the catalog entry used throughout the package tests.
func goldAsset() *entities.AssetType {
	return entities.ReconstructAssetType(1, "Gold", "GOLD", time.Now())
}

func goldCatalog() *mockAssetRepo {
	return &mockAssetRepo{
		findByIdentifierFunc: func(ctx context.Context, identifier string) (*entities.AssetType, error) {
			if identifier == "Gold" || identifier == "GOLD" {
				return goldAsset(), nil
			}
			return nil, domainErrors.ErrEntityNotFound
		},
	}
}

func walletWithBalance(userID uuid.UUID, balance string) *mockWalletRepo {
	return &mockWalletRepo{
		findByUserAndAssetFunc: func(ctx context.Context, uid uuid.UUID, assetTypeID int32) (*entities.Wallet, error) {
			if uid == userID && assetTypeID == 1 {
				now := time.Now()
				return entities.ReconstructWallet(2, userID, 1, valueobjects.MustAmount(balance), 1, now, now), nil
			}
			return nil, domainErrors.ErrEntityNotFound
		},
	}
}

// compile-time interface checks for the mocks
var (
	_ ports.AssetTypeRepository   = (*mockAssetRepo)(nil)
	_ ports.WalletRepository      = (*mockWalletRepo)(nil)
	_ ports.TransactionRepository = (*mockTransactionRepo)(nil)
	_ ports.KeyValueCache         = (*mockCache)(nil)
)
