package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/coinvault/internal/application/dtos"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/google/uuid"
)

// TestGetBalance_ExistingWallet checks the read of a funded wallet
func TestGetBalance_ExistingWallet(t *testing.T) {
	userID := uuid.New()
	uc := NewGetBalanceUseCase(walletWithBalance(userID, "125.50"), goldCatalog(), nil, 0)

	dto, err := uc.Execute(context.Background(), dtos.GetBalanceQuery{
		UserID:    userID.String(),
		AssetType: "GOLD",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if dto.Balance != "125.50" {
		t.Errorf("Balance = %q, want 125.50", dto.Balance)
	}
	if dto.AssetCode != "GOLD" {
		t.Errorf("AssetCode = %q, want GOLD", dto.AssetCode)
	}
	if dto.UserID != userID {
		t.Errorf("UserID = %v, want %v", dto.UserID, userID)
	}
}

// TestGetBalance_AbsentWallet checks that a missing wallet row reads as zero
func TestGetBalance_AbsentWallet(t *testing.T) {
	uc := NewGetBalanceUseCase(&mockWalletRepo{}, goldCatalog(), nil, 0)

	dto, err := uc.Execute(context.Background(), dtos.GetBalanceQuery{
		UserID:    uuid.New().String(),
		AssetType: "GOLD",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if dto.Balance != "0.00" {
		t.Errorf("Balance = %q, want 0.00", dto.Balance)
	}
}

// TestGetBalance_UnknownAsset checks rejection of an unknown asset identifier
func TestGetBalance_UnknownAsset(t *testing.T) {
	uc := NewGetBalanceUseCase(&mockWalletRepo{}, goldCatalog(), nil, 0)

	_, err := uc.Execute(context.Background(), dtos.GetBalanceQuery{
		UserID:    uuid.New().String(),
		AssetType: "gold",
	})

	if !errors.Is(err, domainErrors.ErrUnknownAssetType) {
		t.Errorf("Execute() error = %v, want ErrUnknownAssetType", err)
	}
}

// TestGetBalance_MalformedUserID checks the UUID guard
func TestGetBalance_MalformedUserID(t *testing.T) {
	uc := NewGetBalanceUseCase(&mockWalletRepo{}, goldCatalog(), nil, 0)

	_, err := uc.Execute(context.Background(), dtos.GetBalanceQuery{
		UserID:    "not-a-uuid",
		AssetType: "GOLD",
	})

	if !errors.Is(err, domainErrors.ErrInvalidArgument) {
		t.Errorf("Execute() error = %v, want ErrInvalidArgument", err)
	}
}

// TestGetBalance_CacheRoundTrip checks that the second read is served from cache
func TestGetBalance_CacheRoundTrip(t *testing.T) {
	userID := uuid.New()
	cache := newMockCache()
	uc := NewGetBalanceUseCase(walletWithBalance(userID, "42.00"), goldCatalog(), cache, time.Minute)

	q := dtos.GetBalanceQuery{UserID: userID.String(), AssetType: "GOLD"}

	first, err := uc.Execute(context.Background(), q)
	if err != nil {
		t.Fatalf("first Execute() error = %v, want nil", err)
	}
	second, err := uc.Execute(context.Background(), q)
	if err != nil {
		t.Fatalf("second Execute() error = %v, want nil", err)
	}

	if first.Balance != "42.00" || second.Balance != "42.00" {
		t.Errorf("balances = %q / %q, want 42.00 for both", first.Balance, second.Balance)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}
