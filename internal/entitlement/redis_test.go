// internal/entitlement/redis_test.go
package entitlement

import (
	"context"
	"testing"
	"time"

	"premium-bot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func TestRedisStore_ActivateThenActive(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	expiresAt, err := store.Activate(ctx, models.UserID(42), 1)
	require.NoError(t, err)

	active, err := store.IsActive(ctx, models.UserID(42))
	require.NoError(t, err)
	assert.True(t, active)

	expiry, err := store.ExpiryOf(ctx, models.UserID(42))
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.WithinDuration(t, expiresAt, *expiry, time.Second)
}

func TestRedisStore_UnknownUser(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	active, err := store.IsActive(ctx, models.UserID(99))
	require.NoError(t, err)
	assert.False(t, active)

	expiry, err := store.ExpiryOf(ctx, models.UserID(99))
	require.NoError(t, err)
	assert.Nil(t, expiry)
}

func TestRedisStore_PastExpiryStillReadable(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	// Force a clock in the past so the written expiry is already over.
	past := time.Now().Add(-48 * time.Hour)
	store.now = func() time.Time { return past }
	_, err := store.Activate(ctx, models.UserID(1), 1)
	require.NoError(t, err)

	store.now = time.Now

	active, err := store.IsActive(ctx, models.UserID(1))
	require.NoError(t, err)
	assert.False(t, active)

	// The stale entry is not deleted, only judged inactive.
	expiry, err := store.ExpiryOf(ctx, models.UserID(1))
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.True(t, expiry.Before(time.Now()))
}

func TestRedisStore_ActivationOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestRedisStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	_, err := store.Activate(ctx, models.UserID(42), 30)
	require.NoError(t, err)

	second, err := store.Activate(ctx, models.UserID(42), 1)
	require.NoError(t, err)

	expiry, err := store.ExpiryOf(ctx, models.UserID(42))
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.True(t, expiry.Equal(second))
	assert.True(t, expiry.Equal(base.Add(24*time.Hour)))
}
