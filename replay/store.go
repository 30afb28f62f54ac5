package replay

import (
	"context"
	"errors"
	"time"
)

// ErrStoreWrite classifies a failed replay-record write. The cache logs it
// and lets authentication proceed; callers never see it.
var ErrStoreWrite = errors.New("replay store write failed")

// Store is a shared key/value store with per-key absolute expiry. The
// backing store must be shared across process instances when the
// authentication service runs behind a load balancer, which is why the
// interface takes a context and may fail.
type Store interface {
	// Get returns the live value for key. A missing or expired entry is
	// (_, false, nil).
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes value under key, expiring at expiresAt.
	Set(ctx context.Context, key string, value string, expiresAt time.Time) error
}
