package query

import (
	"context"
	"fmt"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListTransactionsUseCase pages through a user's transaction history,
// newest first.
type ListTransactionsUseCase struct {
	transactions ports.TransactionRepository
}

// NewListTransactionsUseCase creates the use case.
func NewListTransactionsUseCase(transactions ports.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{transactions: transactions}
}

// Execute validates the page window and reads the slice plus the total count.
// A zero limit selects the default page size.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, q dtos.ListTransactionsQuery) (*dtos.TransactionPageDTO, error) {
	userID, err := uuid.Parse(q.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	limit := q.Limit
	switch {
	case limit == 0:
		limit = defaultPageLimit
	case limit < 0:
		return nil, errors.ValidationError{Field: "limit", Message: "must not be negative"}
	case limit > maxPageLimit:
		return nil, errors.ValidationError{Field: "limit", Message: fmt.Sprintf("must not exceed %d", maxPageLimit)}
	}
	if q.Offset < 0 {
		return nil, errors.ValidationError{Field: "offset", Message: "must not be negative"}
	}

	txs, err := uc.transactions.ListByUser(ctx, userID, limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	total, err := uc.transactions.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	return &dtos.TransactionPageDTO{
		Items:  dtos.TransactionsToDTO(txs),
		Total:  total,
		Limit:  limit,
		Offset: q.Offset,
	}, nil
}
