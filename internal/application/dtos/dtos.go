// Package dtos defines the data transfer objects crossing the application
// boundary. Entities stay inside the domain; adapters see only DTOs.
package dtos

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/google/uuid"
)

// TransactionDTO is the external view of a transaction.
type TransactionDTO struct {
	ID             uuid.UUID              `json:"id"`
	IdempotencyKey string                 `json:"idempotency_key"`
	Kind           string                 `json:"kind"`
	Status         string                 `json:"status"`
	UserID         uuid.UUID              `json:"user_id"`
	AssetCode      string                 `json:"asset_code,omitempty"`
	Amount         string                 `json:"amount"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	ProcessedAt    *time.Time             `json:"processed_at,omitempty"`

	// Replayed is true when the idempotency gate returned a previously
	// completed record instead of executing the operation again.
	Replayed bool `json:"replayed,omitempty"`
}

// TransactionToDTO maps a transaction entity to its external view.
func TransactionToDTO(tx *entities.Transaction, replayed bool) *TransactionDTO {
	return &TransactionDTO{
		ID:             tx.ID(),
		IdempotencyKey: tx.IdempotencyKey(),
		Kind:           string(tx.Kind()),
		Status:         string(tx.Status()),
		UserID:         tx.UserID(),
		AssetCode:      tx.AssetCode(),
		Amount:         tx.Amount().String(),
		Metadata:       tx.Metadata(),
		CreatedAt:      tx.CreatedAt(),
		ProcessedAt:    tx.ProcessedAt(),
		Replayed:       replayed,
	}
}

// TransactionsToDTO maps a slice of transactions.
func TransactionsToDTO(txs []*entities.Transaction) []*TransactionDTO {
	out := make([]*TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionToDTO(tx, false))
	}
	return out
}

// BalanceDTO is the external view of one wallet balance.
type BalanceDTO struct {
	UserID    uuid.UUID `json:"user_id"`
	AssetCode string    `json:"asset_code"`
	Balance   string    `json:"balance"`
}

// AssetTypeDTO is the external view of a catalog entry.
type AssetTypeDTO struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// AssetTypeToDTO maps an asset type entity to its external view.
func AssetTypeToDTO(asset *entities.AssetType) *AssetTypeDTO {
	return &AssetTypeDTO{
		ID:        asset.ID(),
		Name:      asset.Name(),
		Code:      asset.Code(),
		CreatedAt: asset.CreatedAt(),
	}
}

// TransactionPageDTO is a paginated transaction listing.
type TransactionPageDTO struct {
	Items  []*TransactionDTO `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
