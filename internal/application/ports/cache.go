// Package ports - read-side cache contract.
package ports

import (
	"context"
	"time"
)

// KeyValueCache is a small string cache used by the query surface only.
// The ledger engine never reads through a cache; its reads happen in the
// store, under locks. A miss and an infrastructure error look the same to
// callers holding a fallback path, so Get reports presence explicitly.
type KeyValueCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
