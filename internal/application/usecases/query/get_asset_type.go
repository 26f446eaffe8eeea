package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/errors"
)

// GetAssetTypeUseCase resolves a catalog entry by name or code. The catalog
// is small and append-only, so entries cache well.
type GetAssetTypeUseCase struct {
	assets ports.AssetTypeRepository
	cache  ports.KeyValueCache
	ttl    time.Duration
}

// NewGetAssetTypeUseCase creates the use case. cache may be nil.
func NewGetAssetTypeUseCase(assets ports.AssetTypeRepository, cache ports.KeyValueCache, ttl time.Duration) *GetAssetTypeUseCase {
	return &GetAssetTypeUseCase{assets: assets, cache: cache, ttl: ttl}
}

// Execute looks up the asset by its exact, case-sensitive name or code.
func (uc *GetAssetTypeUseCase) Execute(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error) {
	if identifier == "" {
		return nil, errors.ValidationError{Field: "identifier", Message: "must not be empty"}
	}

	cacheKey := "asset:" + identifier
	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, cacheKey); err == nil && ok {
			var dto dtos.AssetTypeDTO
			if err := json.Unmarshal([]byte(cached), &dto); err == nil {
				return &dto, nil
			}
			// A corrupt entry is dropped and reloaded from the store.
			_ = uc.cache.Delete(ctx, cacheKey)
		}
	}

	asset, err := uc.assets.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("asset type %q: %w", identifier, errors.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("resolve asset type: %w", err)
	}

	dto := dtos.AssetTypeToDTO(asset)
	if uc.cache != nil {
		if raw, err := json.Marshal(dto); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, string(raw), uc.ttl)
		}
	}
	return dto, nil
}

// ListAssetTypes returns the full catalog. Not cached; the catalog endpoint
// is rarely hot and the listing must reflect new entries immediately.
func (uc *GetAssetTypeUseCase) ListAssetTypes(ctx context.Context) ([]*dtos.AssetTypeDTO, error) {
	assets, err := uc.assets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}

	out := make([]*dtos.AssetTypeDTO, 0, len(assets))
	for _, asset := range assets {
		out = append(out, dtos.AssetTypeToDTO(asset))
	}
	return out, nil
}
