package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/axent-pl/clientauth/common/logx"
)

const (
	keySeparator = "::"
	// Records outlive the assertion itself so that an assertion presented
	// right at its expiry instant is still caught inside the clock-skew
	// window.
	graceWindow = 5 * time.Minute
)

// Cache tracks consumed assertion identifiers. Existence of a live record is
// the sole replay signal; entries are never deleted explicitly, they expire.
//
// Both operations fail open: a store outage degrades replay protection
// rather than blocking authentication. That trade-off is deliberate and the
// failures are logged. Two concurrent validations of the same (clientID,
// jti) pair may both pass the check, as there is no insert-if-absent
// primitive here; deployments wanting strict exclusion need an atomic store
// operation instead.
type Cache struct {
	store Store
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// IsReplay reports whether a live record exists for the (clientID, jti) pair.
func (c *Cache) IsReplay(ctx context.Context, clientID, jti string) bool {
	value, ok, err := c.store.Get(ctx, recordKey(clientID, jti))
	if err != nil {
		logx.L().Warn("replay lookup failed, treating assertion as unseen", "client_id", clientID, "error", err)
		return false
	}
	return ok && value != ""
}

// Record marks the (clientID, jti) pair as consumed until the assertion's
// expiry plus the grace window.
func (c *Cache) Record(ctx context.Context, clientID, jti string, expiresAt time.Time) {
	err := c.store.Set(ctx, recordKey(clientID, jti), jti, expiresAt.Add(graceWindow))
	if err != nil {
		logx.L().Warn("could not record consumed assertion", "client_id", clientID, "error", fmt.Errorf("%w: %v", ErrStoreWrite, err))
	}
}

func recordKey(clientID, jti string) string {
	return clientID + keySeparator + jti
}
