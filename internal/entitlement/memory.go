// internal/entitlement/memory.go
package entitlement

import (
	"context"
	"sync"
	"time"

	"premium-bot/internal/models"
)

// MemoryStore is the in-process reference backing: a mutex-guarded map.
// Writes for the same user are serialized by the lock; reads take a
// consistent snapshot without blocking each other.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[models.UserID]time.Time

	// now is swappable in tests. Wall clock in production; a backward jump
	// between a write and a later read can briefly mis-judge activity.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[models.UserID]time.Time),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock creates a store with an injected clock for tests.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[models.UserID]time.Time),
		now:     now,
	}
}

func (s *MemoryStore) Activate(_ context.Context, userID models.UserID, durationDays int) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(time.Duration(durationDays) * 24 * time.Hour)
	s.entries[userID] = expiresAt
	return expiresAt, nil
}

func (s *MemoryStore) IsActive(_ context.Context, userID models.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.entries[userID]
	if !ok {
		return false, nil
	}
	return s.now().Before(expiresAt), nil
}

func (s *MemoryStore) ExpiryOf(_ context.Context, userID models.UserID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.entries[userID]
	if !ok {
		return nil, nil
	}
	return &expiresAt, nil
}
