// Package handlers - asset catalog HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelora/coinvault/internal/adapters/http/common"
	"github.com/avelora/coinvault/internal/application/dtos"
	domainerrors "github.com/avelora/coinvault/internal/domain/errors"
)

// ============================================
// Use Case Interfaces
// ============================================

// GetAssetTypeUseCase resolves one catalog entry by name or code.
type GetAssetTypeUseCase interface {
	Execute(ctx context.Context, identifier string) (*dtos.AssetTypeDTO, error)
	ListAssetTypes(ctx context.Context) ([]*dtos.AssetTypeDTO, error)
}

// ============================================
// Asset Handler
// ============================================

// AssetHandler serves the asset catalog endpoints.
type AssetHandler struct {
	assets GetAssetTypeUseCase
}

// NewAssetHandler creates the handler.
func NewAssetHandler(assets GetAssetTypeUseCase) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// ============================================
// HTTP Handlers
// ============================================

// AssetIdentifierParam is the asset identifier URI parameter.
type AssetIdentifierParam struct {
	Identifier string `uri:"identifier" binding:"required,min=1,max=100"`
}

// GetAssetType returns one catalog entry. Lookup is exact and
// case-sensitive on both name and code.
//
// @Summary Get asset type
// @Description Get one asset type by exact name or code
// @Tags Assets
// @Produce json
// @Param identifier path string true "Asset name or code"
// @Success 200 {object} common.APIResponse{data=dtos.AssetTypeDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/assets/{identifier} [get]
func (h *AssetHandler) GetAssetType(c *gin.Context) {
	var params AssetIdentifierParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.assets.Execute(c.Request.Context(), params.Identifier)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			common.NotFoundResponse(c, "Asset type")
			return
		}
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListAssetTypes returns the whole catalog.
//
// @Summary List asset types
// @Description Get the full asset type catalog
// @Tags Assets
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]dtos.AssetTypeDTO}
// @Router /api/v1/assets [get]
func (h *AssetHandler) ListAssetTypes(c *gin.Context) {
	result, err := h.assets.ListAssetTypes(c.Request.Context())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes registers the asset catalog routes.
//
// Routes:
//   - GET /assets             - Full catalog
//   - GET /assets/:identifier - One entry by name or code
func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/assets")
	{
		assets.GET("", h.ListAssetTypes)
		assets.GET("/:identifier", h.GetAssetType)
	}
}
