package ports

import (
	"context"
	"time"
)

// RefreshLock serializes concurrent token-refresh attempts for the same
// user (refresh-stampede protection, §5/§9).
type RefreshLock interface {
	// TryLock attempts to acquire the per-user lock for ttl. unlock is a
	// no-op-safe release function; ok is false if another worker holds it.
	TryLock(ctx context.Context, userID uint, ttl time.Duration) (unlock func(), ok bool, err error)
}
