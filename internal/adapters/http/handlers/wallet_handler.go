// Package handlers - wallet HTTP handlers: balance movements and reads.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelora/coinvault/internal/adapters/http/common"
	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
)

// ============================================
// Use Case Interfaces
// ============================================

// TopUpUseCase credits a user wallet from the system wallet.
type TopUpUseCase interface {
	Execute(ctx context.Context, cmd dtos.TopUpCommand) (*dtos.TransactionDTO, error)
}

// GrantBonusUseCase credits a user wallet as a promotional grant.
type GrantBonusUseCase interface {
	Execute(ctx context.Context, cmd dtos.GrantBonusCommand) (*dtos.TransactionDTO, error)
}

// SpendUseCase debits a user wallet in favour of the system wallet.
type SpendUseCase interface {
	Execute(ctx context.Context, cmd dtos.SpendCommand) (*dtos.TransactionDTO, error)
}

// GetBalanceUseCase reads one wallet balance.
type GetBalanceUseCase interface {
	Execute(ctx context.Context, query dtos.GetBalanceQuery) (*dtos.BalanceDTO, error)
}

// ============================================
// Wallet Handler
// ============================================

// WalletHandler serves the balance movement and balance read endpoints.
type WalletHandler struct {
	topUp      TopUpUseCase
	grantBonus GrantBonusUseCase
	spend      SpendUseCase
	getBalance GetBalanceUseCase
}

// NewWalletHandler creates the handler.
func NewWalletHandler(
	topUp TopUpUseCase,
	grantBonus GrantBonusUseCase,
	spend SpendUseCase,
	getBalance GetBalanceUseCase,
) *WalletHandler {
	return &WalletHandler{
		topUp:      topUp,
		grantBonus: grantBonus,
		spend:      spend,
		getBalance: getBalance,
	}
}

// ============================================
// Request DTOs
// ============================================

// MovementRequest is the shared body of top-up, bonus and spend.
//
// @Description Balance movement request body
type MovementRequest struct {
	UserID         string                 `json:"user_id" binding:"required,uuid"`
	AssetType      string                 `json:"asset_type" binding:"required,min=1,max=100"`
	Amount         string                 `json:"amount" binding:"required,asset_amount"`
	IdempotencyKey string                 `json:"idempotency_key" binding:"required,min=1,max=255"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// UserIDParam is the user id URI parameter.
type UserIDParam struct {
	UserID string `uri:"user_id" binding:"required,uuid"`
}

// BalanceParams are the balance query string parameters.
type BalanceParams struct {
	Asset string `form:"asset" binding:"required,min=1,max=100"`
}

// parseAmount converts the request amount to the canonical value object.
func (r MovementRequest) parseAmount(c *gin.Context) (valueobjects.Amount, bool) {
	amount, err := valueobjects.NewAmount(r.Amount)
	if err != nil {
		common.HandleDomainError(c, err)
		return valueobjects.Amount{}, false
	}
	return amount, true
}

// ============================================
// HTTP Handlers
// ============================================

// TopUp credits a user wallet after an external purchase.
//
// @Summary Top up a wallet
// @Description Credit a user wallet from the system wallet
// @Tags Wallets
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Movement data"
// @Success 201 {object} common.APIResponse{data=dtos.TransactionDTO}
// @Success 200 {object} common.APIResponse{data=dtos.TransactionDTO} "Idempotent replay"
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse "Idempotency key contested"
// @Failure 503 {object} common.APIResponse "Transient storage contention"
// @Router /api/v1/wallets/top-up [post]
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req MovementRequest
	if !BindJSON(c, &req) {
		return
	}

	amount, ok := req.parseAmount(c)
	if !ok {
		return
	}

	result, err := h.topUp.Execute(c.Request.Context(), dtos.TopUpCommand{
		UserID:         req.UserID,
		AssetType:      req.AssetType,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, movementStatus(result), result)
}

// GrantBonus credits a user wallet as a promotional grant.
//
// @Summary Grant a bonus
// @Description Credit a user wallet as a promotional grant
// @Tags Wallets
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Movement data"
// @Success 201 {object} common.APIResponse{data=dtos.TransactionDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Router /api/v1/wallets/bonus [post]
func (h *WalletHandler) GrantBonus(c *gin.Context) {
	var req MovementRequest
	if !BindJSON(c, &req) {
		return
	}

	amount, ok := req.parseAmount(c)
	if !ok {
		return
	}

	result, err := h.grantBonus.Execute(c.Request.Context(), dtos.GrantBonusCommand{
		UserID:         req.UserID,
		AssetType:      req.AssetType,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, movementStatus(result), result)
}

// Spend debits a user wallet in favour of the system wallet.
//
// @Summary Spend from a wallet
// @Description Debit a user wallet in favour of the system wallet
// @Tags Wallets
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Movement data"
// @Success 201 {object} common.APIResponse{data=dtos.TransactionDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse "Insufficient funds"
// @Failure 503 {object} common.APIResponse
// @Router /api/v1/wallets/spend [post]
func (h *WalletHandler) Spend(c *gin.Context) {
	var req MovementRequest
	if !BindJSON(c, &req) {
		return
	}

	amount, ok := req.parseAmount(c)
	if !ok {
		return
	}

	result, err := h.spend.Execute(c.Request.Context(), dtos.SpendCommand{
		UserID:         req.UserID,
		AssetType:      req.AssetType,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, movementStatus(result), result)
}

// GetBalance returns one wallet balance. A wallet that was never touched
// reads as "0.00", not as 404.
//
// @Summary Get wallet balance
// @Description Get the balance of one user wallet for one asset type
// @Tags Wallets
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param asset query string true "Asset type name or code"
// @Success 200 {object} common.APIResponse{data=dtos.BalanceDTO}
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/wallets/{user_id}/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	var params UserIDParam
	if !BindURI(c, &params) {
		return
	}

	var query BalanceParams
	if !BindQuery(c, &query) {
		return
	}

	result, err := h.getBalance.Execute(c.Request.Context(), dtos.GetBalanceQuery{
		UserID:    params.UserID,
		AssetType: query.Asset,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// movementStatus distinguishes a fresh movement from an idempotent replay.
func movementStatus(tx *dtos.TransactionDTO) int {
	if tx.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// RegisterRoutes registers the wallet routes.
//
// Routes:
//   - POST /wallets/top-up           - Credit from the system wallet
//   - POST /wallets/bonus            - Promotional credit
//   - POST /wallets/spend            - Debit to the system wallet
//   - GET  /wallets/:user_id/balance - Read one balance
func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallets := router.Group("/wallets")
	{
		wallets.POST("/top-up", h.TopUp)
		wallets.POST("/bonus", h.GrantBonus)
		wallets.POST("/spend", h.Spend)
		wallets.GET("/:user_id/balance", h.GetBalance)
	}
}
