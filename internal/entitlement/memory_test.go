// internal/entitlement/memory_test.go
package entitlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"premium-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ==========================
// Core Functionality Tests
// ==========================

func TestMemoryStore_ActivateThenActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	expiresAt, err := store.Activate(ctx, models.UserID(42), 1)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	active, err := store.IsActive(ctx, models.UserID(42))
	require.NoError(t, err)
	assert.True(t, active)
}

func TestMemoryStore_UnknownUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	active, err := store.IsActive(ctx, models.UserID(7))
	require.NoError(t, err)
	assert.False(t, active)

	expiry, err := store.ExpiryOf(ctx, models.UserID(7))
	require.NoError(t, err)
	assert.Nil(t, expiry)
}

func TestMemoryStore_ActivationOverwrites(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(fixedClock(base))

	first, err := store.Activate(ctx, models.UserID(42), 30)
	require.NoError(t, err)
	assert.Equal(t, base.Add(30*24*time.Hour), first)

	// Second activation with a shorter duration must fully replace the
	// earlier expiry, not extend it.
	second, err := store.Activate(ctx, models.UserID(42), 1)
	require.NoError(t, err)
	assert.Equal(t, base.Add(24*time.Hour), second)

	expiry, err := store.ExpiryOf(ctx, models.UserID(42))
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.Equal(t, second, *expiry)
	assert.True(t, expiry.Before(first))
}

func TestMemoryStore_ExpiryJudgedAtReadTime(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStoreWithClock(func() time.Time { return current })

	expiresAt, err := store.Activate(ctx, models.UserID(1), 1)
	require.NoError(t, err)

	active, err := store.IsActive(ctx, models.UserID(1))
	require.NoError(t, err)
	assert.True(t, active)

	// Move past the expiry: the entry stays stored but reads inactive.
	current = expiresAt.Add(time.Second)

	active, err = store.IsActive(ctx, models.UserID(1))
	require.NoError(t, err)
	assert.False(t, active)

	expiry, err := store.ExpiryOf(ctx, models.UserID(1))
	require.NoError(t, err)
	require.NotNil(t, expiry)
	assert.Equal(t, expiresAt, *expiry)
}

func TestMemoryStore_ConcurrentActivations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(days int) {
			defer wg.Done()
			_, err := store.Activate(ctx, models.UserID(42), days%7+1)
			assert.NoError(t, err)
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.IsActive(ctx, models.UserID(42))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active, err := store.IsActive(ctx, models.UserID(42))
	require.NoError(t, err)
	assert.True(t, active)
}
