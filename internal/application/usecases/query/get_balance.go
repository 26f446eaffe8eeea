// Package query - the read-only surface over committed ledger state.
//
// Reads here are uncontended: no advisory or row locks are taken. The
// optional cache serves only this surface; the write engine always reads
// the store directly.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/google/uuid"
)

// GetBalanceUseCase reads one wallet balance. A user with no wallet row for
// the asset holds a balance of zero, not an error.
type GetBalanceUseCase struct {
	wallets ports.WalletRepository
	assets  ports.AssetTypeRepository
	cache   ports.KeyValueCache
	ttl     time.Duration
}

// NewGetBalanceUseCase creates the use case. cache may be nil to read the
// store on every call.
func NewGetBalanceUseCase(
	wallets ports.WalletRepository,
	assets ports.AssetTypeRepository,
	cache ports.KeyValueCache,
	ttl time.Duration,
) *GetBalanceUseCase {
	return &GetBalanceUseCase{wallets: wallets, assets: assets, cache: cache, ttl: ttl}
}

// Execute resolves the asset and reads the balance.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, q dtos.GetBalanceQuery) (*dtos.BalanceDTO, error) {
	userID, err := uuid.Parse(q.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	asset, err := uc.assets.FindByIdentifier(ctx, q.AssetType)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("%q: %w", q.AssetType, errors.ErrUnknownAssetType)
		}
		return nil, fmt.Errorf("resolve asset type: %w", err)
	}

	cacheKey := fmt.Sprintf("balance:%s:%d", userID, asset.ID())
	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, cacheKey); err == nil && ok {
			return &dtos.BalanceDTO{UserID: userID, AssetCode: asset.Code(), Balance: cached}, nil
		}
		// Cache errors fall through to the store.
	}

	balance := "0.00"
	wallet, err := uc.wallets.FindByUserAndAsset(ctx, userID, asset.ID())
	switch {
	case err == nil:
		balance = wallet.Balance().String()
	case errors.IsNotFound(err):
		// No wallet row yet: the balance is zero.
	default:
		return nil, fmt.Errorf("read balance: %w", err)
	}

	if uc.cache != nil {
		// Best effort; a failed write only costs freshness on the read path.
		_ = uc.cache.Set(ctx, cacheKey, balance, uc.ttl)
	}

	return &dtos.BalanceDTO{UserID: userID, AssetCode: asset.Code(), Balance: balance}, nil
}
