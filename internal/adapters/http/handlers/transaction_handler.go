// Package handlers - transaction history HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelora/coinvault/internal/adapters/http/common"
	"github.com/avelora/coinvault/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// ListTransactionsUseCase pages through a user's transaction history.
type ListTransactionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionPageDTO, error)
}

// ============================================
// Transaction Handler
// ============================================

// TransactionHandler serves the transaction history endpoints.
type TransactionHandler struct {
	listTransactions ListTransactionsUseCase
}

// NewTransactionHandler creates the handler.
func NewTransactionHandler(listTransactions ListTransactionsUseCase) *TransactionHandler {
	return &TransactionHandler{listTransactions: listTransactions}
}

// ============================================
// HTTP Handlers
// ============================================

// ListTransactions returns a page of the user's history, newest first.
// Failed attempts are part of the history and are included.
//
// @Summary List user transactions
// @Description Get a paginated transaction history for one user, newest first
// @Tags Transactions
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Param limit query int false "Page size" default(20) maximum(100)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} common.APIResponse{data=dtos.TransactionPageDTO}
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/wallets/{user_id}/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var params UserIDParam
	if !BindURI(c, &params) {
		return
	}

	page, ok := ParsePage(c)
	if !ok {
		return
	}

	result, err := h.listTransactions.Execute(c.Request.Context(), dtos.ListTransactionsQuery{
		UserID: params.UserID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	meta := &common.APIMeta{
		Limit:  result.Limit,
		Offset: result.Offset,
		Total:  result.Total,
	}
	common.SuccessWithMeta(c, http.StatusOK, result, meta)
}

// RegisterRoutes registers the transaction routes.
//
// Routes:
//   - GET /wallets/:user_id/transactions - Paginated history
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/wallets/:user_id/transactions", h.ListTransactions)
}
