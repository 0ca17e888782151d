package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hhbot/dispatcher/internal/shared/biztime"
)

// NonceInfo records the messenger id an OAuth authorize-URL nonce was
// issued for, so the callback can detect replay or forgery independently
// of the messenger id embedded in state itself.
type NonceInfo struct {
	MessengerID string    `json:"messenger_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedisStateStore provides Redis-based one-time-use storage for the HH
// OAuth state nonce (state = "tg:<messenger_id>:<nonce>", §6.1).
type RedisStateStore struct {
	client *redis.Client
	prefix string        // Key prefix, e.g., "oauth:state:"
	ttl    time.Duration // Expiration time for nonce keys
}

// NewRedisStateStore creates a new RedisStateStore instance
// Parameters:
//   - client: Redis client instance
//   - prefix: Key prefix for namespacing (e.g., "oauth:state:")
//   - ttl: Time-to-live for nonce keys (recommended: 10 minutes)
func NewRedisStateStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Issue records that nonce was handed out for messengerID, with a TTL.
func (s *RedisStateStore) Issue(ctx context.Context, nonce, messengerID string) error {
	if nonce == "" {
		return errors.New("nonce cannot be empty")
	}
	if messengerID == "" {
		return errors.New("messenger id cannot be empty")
	}

	info := NonceInfo{MessengerID: messengerID, CreatedAt: biztime.NowUTC()}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal nonce info: %w", err)
	}

	if err := s.client.Set(ctx, s.buildKey(nonce), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce in redis: %w", err)
	}
	return nil
}

// VerifyAndConsume verifies nonce was issued for messengerID and deletes it
// atomically (GETDEL), so each nonce authorizes exactly one callback.
func (s *RedisStateStore) VerifyAndConsume(ctx context.Context, nonce, messengerID string) error {
	if nonce == "" {
		return errors.New("nonce cannot be empty")
	}

	data, err := s.client.GetDel(ctx, s.buildKey(nonce)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("oauth state not found or expired")
		}
		return fmt.Errorf("failed to retrieve nonce from redis: %w", err)
	}

	var info NonceInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return fmt.Errorf("failed to unmarshal nonce info: %w", err)
	}
	if info.MessengerID != messengerID {
		return errors.New("oauth state messenger id mismatch")
	}
	return nil
}

// buildKey constructs the full Redis key with prefix
func (s *RedisStateStore) buildKey(nonce string) string {
	return s.prefix + nonce
}
