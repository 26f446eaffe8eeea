// Package entities - AssetType is the catalog of virtual assets the system
// tracks. The catalog is seeded by migrations and changes rarely.
package entities

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/errors"
)

// AssetType represents one kind of virtual asset (e.g. GOLD, DIAMOND).
// Name and code are both unique; lookups by either are case-sensitive.
type AssetType struct {
	id        int32
	name      string
	code      string
	createdAt time.Time
}

// NewAssetType creates a new asset type. Used by catalog tooling and tests;
// the production catalog is seeded by migrations.
func NewAssetType(name, code string) (*AssetType, error) {
	if name == "" {
		return nil, errors.ValidationError{Field: "name", Message: "name is required"}
	}
	if code == "" {
		return nil, errors.ValidationError{Field: "code", Message: "code is required"}
	}

	return &AssetType{
		name:      name,
		code:      code,
		createdAt: time.Now(),
	}, nil
}

// ReconstructAssetType reconstructs an AssetType from stored data.
func ReconstructAssetType(id int32, name, code string, createdAt time.Time) *AssetType {
	return &AssetType{
		id:        id,
		name:      name,
		code:      code,
		createdAt: createdAt,
	}
}

// Getters

func (a *AssetType) ID() int32 {
	return a.id
}

func (a *AssetType) Name() string {
	return a.name
}

func (a *AssetType) Code() string {
	return a.code
}

func (a *AssetType) CreatedAt() time.Time {
	return a.createdAt
}
