package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
)

// RedisRefreshLock implements ports.RefreshLock with a Redis SET NX PX
// lock, serializing concurrent token-refresh attempts for one user (§5, §9).
type RedisRefreshLock struct {
	client *redis.Client
	prefix string
}

// NewRedisRefreshLock builds a RedisRefreshLock.
func NewRedisRefreshLock(client *redis.Client, prefix string) *RedisRefreshLock {
	if prefix == "" {
		prefix = "hh:refresh-lock:"
	}
	return &RedisRefreshLock{client: client, prefix: prefix}
}

// TryLock attempts to acquire the per-user lock for ttl.
func (l *RedisRefreshLock) TryLock(ctx context.Context, userID uint, ttl time.Duration) (func(), bool, error) {
	key := fmt.Sprintf("%s%d", l.prefix, userID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("refreshlock: setnx: %w", err)
	}
	if !ok {
		return func() {}, false, nil
	}

	unlock := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		val, err := l.client.Get(releaseCtx, key).Result()
		if err != nil {
			return
		}
		if val == token {
			l.client.Del(releaseCtx, key)
		}
	}
	return unlock, true, nil
}

var _ ports.RefreshLock = (*RedisRefreshLock)(nil)
