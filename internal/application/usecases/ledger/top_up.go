// Package ledger - TopUp use case: user purchases an asset.
//
// Movement: system wallet -> user wallet. The system wallet is debited, the
// user wallet is credited, both inside one engine run.
package ledger

import (
	"context"
	"fmt"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// TopUpUseCase credits a user wallet after an external purchase.
type TopUpUseCase struct {
	assets ports.AssetTypeRepository
	engine *Engine
}

// NewTopUpUseCase creates the use case.
func NewTopUpUseCase(assets ports.AssetTypeRepository, engine *Engine) *TopUpUseCase {
	return &TopUpUseCase{assets: assets, engine: engine}
}

// Execute runs the top-up.
func (uc *TopUpUseCase) Execute(ctx context.Context, cmd dtos.TopUpCommand) (*dtos.TransactionDTO, error) {
	req, err := buildRequest(ctx, uc.assets, entities.TransactionKindTopUp,
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

// buildRequest validates shared command fields and resolves the asset type.
// The catalog lookup is exact and case-sensitive. Unknown assets are
// InvalidArgument, not NotFound: the asset identifier is request input, not
// a resource the caller owns.
func buildRequest(
	ctx context.Context,
	assets ports.AssetTypeRepository,
	kind entities.TransactionKind,
	rawUserID, assetIdentifier string,
	amount valueobjects.Amount,
	idempotencyKey string,
	metadata map[string]interface{},
) (*request, error) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if idempotencyKey == "" {
		return nil, errors.ErrMissingKey
	}

	asset, err := assets.FindByIdentifier(ctx, assetIdentifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, fmt.Errorf("%q: %w", assetIdentifier, errors.ErrUnknownAssetType)
		}
		return nil, fmt.Errorf("resolve asset type: %w", err)
	}

	return &request{
		idempotencyKey: idempotencyKey,
		kind:           kind,
		userID:         userID,
		asset:          asset,
		amount:         amount,
		metadata:       metadata,
	}, nil
}

// buildTransactionDTO maps an engine result to the external view, attaching
// the asset code when the stored row was loaded without the catalog join.
func buildTransactionDTO(res *result, asset *entities.AssetType) *dtos.TransactionDTO {
	dto := dtos.TransactionToDTO(res.tx, res.replayed)
	if dto.AssetCode == "" {
		dto.AssetCode = asset.Code()
	}
	return dto
}
