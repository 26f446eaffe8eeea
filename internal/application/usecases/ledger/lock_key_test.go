package ledger

import (
	"testing"

	"github.com/avelora/coinvault/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockKey_Deterministic(t *testing.T) {
	user := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	first := lockKey(1, user, entities.SystemUserID)
	second := lockKey(1, user, entities.SystemUserID)

	assert.Equal(t, first, second)
}

func TestLockKey_OrderInsensitive(t *testing.T) {
	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")

	assert.Equal(t, lockKey(3, a, b), lockKey(3, b, a))
}

func TestLockKey_DistinguishesScopes(t *testing.T) {
	user := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	other := uuid.MustParse("99999999-8888-7777-6666-555555555555")

	sameUserOtherAsset := lockKey(2, user, entities.SystemUserID)
	baseline := lockKey(1, user, entities.SystemUserID)
	otherUser := lockKey(1, other, entities.SystemUserID)

	assert.NotEqual(t, baseline, sameUserOtherAsset, "different assets must map to different keys")
	assert.NotEqual(t, baseline, otherUser, "different users must map to different keys")
}

func TestLockKey_KnownFold(t *testing.T) {
	// h = h*31 + byte over "0:1" pins the fold against accidental changes.
	key := lockKey(1, uuid.UUID{})

	var want int64
	canonical := uuid.UUID{}.String() + ":1"
	for _, b := range []byte(canonical) {
		want = (want << 5) - want + int64(b)
	}

	assert.Equal(t, want, key)
}
