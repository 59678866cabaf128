// internal/entitlement/redis.go
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"premium-bot/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per user with the expiry stored as the value.
// No TTL is set: an expired entitlement must remain readable via ExpiryOf,
// only IsActive judges it against the clock.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed entitlement store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

func entitlementKey(userID models.UserID) string {
	return fmt.Sprintf("premium:%d", userID)
}

func (s *RedisStore) Activate(ctx context.Context, userID models.UserID, durationDays int) (time.Time, error) {
	expiresAt := s.now().Add(time.Duration(durationDays) * 24 * time.Hour).UTC()

	err := s.client.Set(ctx, entitlementKey(userID), expiresAt.Format(time.RFC3339Nano), 0).Err()
	if err != nil {
		return time.Time{}, fmt.Errorf("set entitlement: %w", err)
	}
	return expiresAt, nil
}

func (s *RedisStore) IsActive(ctx context.Context, userID models.UserID) (bool, error) {
	expiresAt, err := s.ExpiryOf(ctx, userID)
	if err != nil {
		return false, err
	}
	if expiresAt == nil {
		return false, nil
	}
	return s.now().Before(*expiresAt), nil
}

func (s *RedisStore) ExpiryOf(ctx context.Context, userID models.UserID) (*time.Time, error) {
	val, err := s.client.Get(ctx, entitlementKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entitlement: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return nil, fmt.Errorf("parse stored expiry %q: %w", val, err)
	}
	return &expiresAt, nil
}
