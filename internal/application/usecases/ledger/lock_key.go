// Package ledger - the double-entry engine and its operations.
package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// lockKeyDelimiter separates the parts of the lock scope before folding.
const lockKeyDelimiter = ":"

// lockKey derives the signed 64-bit advisory-lock key for an operation scope.
//
// The scope is the set of participating user ids plus the asset-type id.
// Parts are rendered as strings, sorted lexicographically and joined, so the
// key is order-insensitive with respect to the participants: any operation
// touching the same wallets in any order contends on the same lock. The fold
// h = (h << 5) - h + byte is h*31 + byte with natural wraparound; collisions
// only cost extra serialization, never correctness.
func lockKey(assetTypeID int32, users ...uuid.UUID) int64 {
	parts := make([]string, 0, len(users)+1)
	for _, u := range users {
		parts = append(parts, u.String())
	}
	parts = append(parts, strconv.FormatInt(int64(assetTypeID), 10))
	sort.Strings(parts)

	var h int64
	for _, b := range []byte(strings.Join(parts, lockKeyDelimiter)) {
		h = (h << 5) - h + int64(b)
	}
	return h
}
