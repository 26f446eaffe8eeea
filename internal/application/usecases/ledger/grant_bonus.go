// Package ledger - GrantBonus use case: promotional credit to a user wallet.
package ledger

import (
	"context"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
)

// GrantBonusUseCase credits a user wallet as a promotional grant. The
// movement is identical to a top-up; the kind differs for reporting.
type GrantBonusUseCase struct {
	assets ports.AssetTypeRepository
	engine *Engine
}

// NewGrantBonusUseCase creates the use case.
func NewGrantBonusUseCase(assets ports.AssetTypeRepository, engine *Engine) *GrantBonusUseCase {
	return &GrantBonusUseCase{assets: assets, engine: engine}
}

// Execute runs the bonus grant.
func (uc *GrantBonusUseCase) Execute(ctx context.Context, cmd dtos.GrantBonusCommand) (*dtos.TransactionDTO, error) {
	req, err := buildRequest(ctx, uc.assets, entities.TransactionKindBonus,
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
