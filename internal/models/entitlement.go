// internal/models/entitlement.go
package models

import "time"

// Entitlement is the premium access right: one per user, a bare expiry.
// "Active" is always derived as now < ExpiresAt; nothing ever deletes an
// entry, an expired one just reads as inactive.
type Entitlement struct {
	UserID    UserID    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StatusReport answers an entitlement-status query.
type StatusReport struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// PreAuthDecision is the single mandatory answer to a pre-checkout query.
type PreAuthDecision struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// ActivationOutcome is the terminal result of handling a completed payment.
type ActivationOutcome struct {
	OK               bool       `json:"ok"`
	AlreadyProcessed bool       `json:"alreadyProcessed,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Message          string     `json:"message"`
}
