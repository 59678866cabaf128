// internal/entitlement/store.go

// Package entitlement owns the premium expiry state. An entitlement is a
// single timestamp per user; activity is always derived at read time as
// now < expiresAt, so nothing here ever deletes or sweeps entries.
package entitlement

import (
	"context"
	"time"

	"premium-bot/internal/models"
)

// Store maps users to their premium expiry.
type Store interface {
	// Activate sets the expiry to now + durationDays and returns it. A new
	// activation overwrites any prior expiry, it never stacks on top of it.
	Activate(ctx context.Context, userID models.UserID, durationDays int) (time.Time, error)

	// IsActive reports whether the user holds an unexpired entitlement.
	// False when no entry exists.
	IsActive(ctx context.Context, userID models.UserID) (bool, error)

	// ExpiryOf returns the stored expiry, even one already in the past, or
	// nil when the user was never activated.
	ExpiryOf(ctx context.Context, userID models.UserID) (*time.Time, error)
}
