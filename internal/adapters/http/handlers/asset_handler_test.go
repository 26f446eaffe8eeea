package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelora/coinvault/internal/adapters/http/common"
	"github.com/avelora/coinvault/internal/application/dtos"
	domerrors "github.com/avelora/coinvault/internal/domain/errors"
)

// ============================================
// Mock Use Cases
// ============================================

type mockGetAssetTypeUseCase struct {
	ExecuteFn func(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error)
	ListFn    func(ctx context.Context) ([]*dtos.AssetTypeDTO, error)
}

func (m *mockGetAssetTypeUseCase) Execute(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, identifier)
	}
	return nil, nil
}

func (m *mockGetAssetTypeUseCase) ListAssetTypes(ctx context.Context) ([]*dtos.AssetTypeDTO, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

// ============================================
// Helper Functions
// ============================================

func setupAssetTestRouter(handler *AssetHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func goldDTO() *dtos.AssetTypeDTO {
	return &dtos.AssetTypeDTO{ID: 1, Name: "Gold", Code: "GOLD", CreatedAt: time.Now()}
}

// ============================================
// Test Cases
// ============================================

func TestAssetHandler_GetAssetType(t *testing.T) {
	t.Run("FoundByCode", func(t *testing.T) {
		mockUseCase := &mockGetAssetTypeUseCase{
			ExecuteFn: func(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error) {
				assert.Equal(t, "GOLD", identifier)
				return goldDTO(), nil
			},
		}

		router := setupAssetTestRouter(NewAssetHandler(mockUseCase))
		w := getRequest(router, "/api/v1/assets/GOLD")

		assert.Equal(t, http.StatusOK, w.Code)

		var response common.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data, ok := response.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Gold", data["name"])
		assert.Equal(t, "GOLD", data["code"])
	})

	t.Run("AbsentIs404", func(t *testing.T) {
		mockUseCase := &mockGetAssetTypeUseCase{
			ExecuteFn: func(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error) {
				return nil, fmt.Errorf("asset type %q: %w", identifier, domerrors.ErrEntityNotFound)
			},
		}

		router := setupAssetTestRouter(NewAssetHandler(mockUseCase))
		w := getRequest(router, "/api/v1/assets/SILVER")

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response common.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, common.ErrCodeNotFound, response.Error.Code)
	})
}

func TestAssetHandler_ListAssetTypes(t *testing.T) {
	mockUseCase := &mockGetAssetTypeUseCase{
		ListFn: func(ctx context.Context) ([]*dtos.AssetTypeDTO, error) {
			return []*dtos.AssetTypeDTO{
				goldDTO(),
				{ID: 2, Name: "Diamond", Code: "DIAMOND", CreatedAt: time.Now()},
				{ID: 3, Name: "Loyalty Points", Code: "LOYALTY", CreatedAt: time.Now()},
			}, nil
		},
	}

	router := setupAssetTestRouter(NewAssetHandler(mockUseCase))
	w := getRequest(router, "/api/v1/assets")

	assert.Equal(t, http.StatusOK, w.Code)

	var response common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	items, ok := response.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 3)
}
