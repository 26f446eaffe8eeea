package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
)

// TestGetAssetType_ByCode checks lookup by the exact code
func TestGetAssetType_ByCode(t *testing.T) {
	uc := NewGetAssetTypeUseCase(goldCatalog(), nil, 0)

	dto, err := uc.Execute(context.Background(), "GOLD")
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if dto.Code != "GOLD" {
		t.Errorf("Code = %q, want GOLD", dto.Code)
	}
	if dto.Name != "Gold" {
		t.Errorf("Name = %q, want Gold", dto.Name)
	}
	if dto.ID != 1 {
		t.Errorf("ID = %d, want 1", dto.ID)
	}
}

// TestGetAssetType_ByName checks lookup by the exact display name
func TestGetAssetType_ByName(t *testing.T) {
	uc := NewGetAssetTypeUseCase(goldCatalog(), nil, 0)

	dto, err := uc.Execute(context.Background(), "Gold")
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if dto.Code != "GOLD" {
		t.Errorf("Code = %q, want GOLD", dto.Code)
	}
}

// TestGetAssetType_Absent checks the not-found and case-sensitivity behavior
func TestGetAssetType_Absent(t *testing.T) {
	uc := NewGetAssetTypeUseCase(goldCatalog(), nil, 0)

	for _, identifier := range []string{"SILVER", "gold", "GOLD "} {
		_, err := uc.Execute(context.Background(), identifier)
		if !errors.Is(err, domainErrors.ErrEntityNotFound) {
			t.Errorf("Execute(%q) error = %v, want ErrEntityNotFound", identifier, err)
		}
	}
}

// TestGetAssetType_EmptyIdentifier checks the empty-input guard
func TestGetAssetType_EmptyIdentifier(t *testing.T) {
	uc := NewGetAssetTypeUseCase(goldCatalog(), nil, 0)

	_, err := uc.Execute(context.Background(), "")
	if !errors.Is(err, domainErrors.ErrInvalidArgument) {
		t.Errorf("Execute(\"\") error = %v, want ErrInvalidArgument", err)
	}
}

// TestGetAssetType_CacheRoundTrip checks that the second lookup hits the cache
func TestGetAssetType_CacheRoundTrip(t *testing.T) {
	cache := newMockCache()
	uc := NewGetAssetTypeUseCase(goldCatalog(), cache, time.Minute)

	first, err := uc.Execute(context.Background(), "GOLD")
	if err != nil {
		t.Fatalf("first Execute() error = %v, want nil", err)
	}
	second, err := uc.Execute(context.Background(), "GOLD")
	if err != nil {
		t.Fatalf("second Execute() error = %v, want nil", err)
	}

	if first.Code != second.Code || first.ID != second.ID {
		t.Errorf("cached lookup diverged: %+v vs %+v", first, second)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}

// TestListAssetTypes checks the catalog listing
func TestListAssetTypes(t *testing.T) {
	repo := &mockAssetRepo{
		listFunc: func(ctx context.Context) ([]*entities.AssetType, error) {
			now := time.Now()
			return []*entities.AssetType{
				entities.ReconstructAssetType(1, "Gold", "GOLD", now),
				entities.ReconstructAssetType(2, "Diamond", "DIAMOND", now),
				entities.ReconstructAssetType(3, "Loyalty Points", "LOYALTY", now),
			}, nil
		},
	}
	uc := NewGetAssetTypeUseCase(repo, nil, 0)

	dtos, err := uc.ListAssetTypes(context.Background())
	if err != nil {
		t.Fatalf("ListAssetTypes() error = %v, want nil", err)
	}

	if len(dtos) != 3 {
		t.Fatalf("len = %d, want 3", len(dtos))
	}
	if dtos[2].Code != "LOYALTY" {
		t.Errorf("Code = %q, want LOYALTY", dtos[2].Code)
	}
}
