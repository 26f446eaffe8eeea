// Package dtos - commands accepted by the ledger use cases.
//
// Amounts arrive as either JSON strings or bare numbers; Amount's decoder
// normalizes both to the canonical scale-2 decimal at the boundary.
package dtos

import "github.com/avelora/coinvault/internal/domain/valueobjects"

// TopUpCommand credits a user wallet from the system wallet.
type TopUpCommand struct {
	UserID         string                 `json:"user_id" binding:"required,uuid"`
	AssetType      string                 `json:"asset_type" binding:"required"`
	Amount         valueobjects.Amount    `json:"amount" binding:"required"`
	IdempotencyKey string                 `json:"idempotency_key" binding:"required,max=255"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// GrantBonusCommand credits a user wallet as a promotional grant.
// Same movement as a top-up; recorded with its own kind for reporting.
type GrantBonusCommand struct {
	UserID         string                 `json:"user_id" binding:"required,uuid"`
	AssetType      string                 `json:"asset_type" binding:"required"`
	Amount         valueobjects.Amount    `json:"amount" binding:"required"`
	IdempotencyKey string                 `json:"idempotency_key" binding:"required,max=255"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// SpendCommand debits a user wallet in favour of the system wallet.
type SpendCommand struct {
	UserID         string                 `json:"user_id" binding:"required,uuid"`
	AssetType      string                 `json:"asset_type" binding:"required"`
	Amount         valueobjects.Amount    `json:"amount" binding:"required"`
	IdempotencyKey string                 `json:"idempotency_key" binding:"required,max=255"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// GetBalanceQuery reads one wallet balance.
type GetBalanceQuery struct {
	UserID    string `json:"user_id"`
	AssetType string `json:"asset_type"`
}

// ListTransactionsQuery pages through a user's transaction history.
type ListTransactionsQuery struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
