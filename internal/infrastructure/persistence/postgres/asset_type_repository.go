package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
)

// Compile-time check
var _ ports.AssetTypeRepository = (*AssetTypeRepository)(nil)

// AssetTypeRepository implements ports.AssetTypeRepository.
// The catalog is seeded by migrations; lookups are exact and case-sensitive.
type AssetTypeRepository struct {
	pool *pgxpool.Pool
}

// NewAssetTypeRepository creates the repository.
func NewAssetTypeRepository(pool *pgxpool.Pool) *AssetTypeRepository {
	return &AssetTypeRepository{pool: pool}
}

// FindByID loads an asset type by its numeric id.
func (r *AssetTypeRepository) FindByID(ctx context.Context, id int32) (*entities.AssetType, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, name, code, created_at
		FROM asset_types
		WHERE id = $1
	`

	return r.scanAssetType(q.QueryRow(ctx, query, id))
}

// FindByIdentifier resolves an asset type by name or code, case-sensitively.
func (r *AssetTypeRepository) FindByIdentifier(ctx context.Context, identifier string) (*entities.AssetType, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, name, code, created_at
		FROM asset_types
		WHERE name = $1 OR code = $1
	`

	return r.scanAssetType(q.QueryRow(ctx, query, identifier))
}

// List returns the full catalog ordered by id.
func (r *AssetTypeRepository) List(ctx context.Context) ([]*entities.AssetType, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, name, code, created_at
		FROM asset_types
		ORDER BY id ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list asset types: %w", mapStoreError(err))
	}
	defer rows.Close()

	var assets []*entities.AssetType
	for rows.Next() {
		var (
			id        int32
			name      string
			code      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &code, &createdAt); err != nil {
			return nil, fmt.Errorf("scan asset type row: %w", err)
		}
		assets = append(assets, entities.ReconstructAssetType(id, name, code, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset type rows: %w", mapStoreError(err))
	}

	return assets, nil
}

func (r *AssetTypeRepository) scanAssetType(row pgx.Row) (*entities.AssetType, error) {
	var (
		id        int32
		name      string
		code      string
		createdAt time.Time
	)

	if err := row.Scan(&id, &name, &code, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("scan asset type: %w", mapStoreError(err))
	}

	return entities.ReconstructAssetType(id, name, code, createdAt), nil
}
