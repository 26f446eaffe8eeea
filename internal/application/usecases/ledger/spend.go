// Package ledger - Spend use case: user pays the system wallet.
package ledger

import (
	"context"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
)

// SpendUseCase debits a user wallet in favour of the system wallet.
// Fails with InsufficientFunds when the balance cannot cover the amount;
// spending the entire balance down to exactly zero is allowed.
type SpendUseCase struct {
	assets ports.AssetTypeRepository
	engine *Engine
}

// NewSpendUseCase creates the use case.
func NewSpendUseCase(assets ports.AssetTypeRepository, engine *Engine) *SpendUseCase {
	return &SpendUseCase{assets: assets, engine: engine}
}

// Execute runs the spend.
func (uc *SpendUseCase) Execute(ctx context.Context, cmd dtos.SpendCommand) (*dtos.TransactionDTO, error) {
	req, err := buildRequest(ctx, uc.assets, entities.TransactionKindSpend,
		cmd.UserID, cmd.AssetType, cmd.Amount, cmd.IdempotencyKey, cmd.Metadata)
	if err != nil {
		return nil, err
	}

	res, err := uc.engine.run(ctx, *req)
	if err != nil {
		return nil, err
	}
	return buildTransactionDTO(res, req.asset), nil
}
