// internal/models/payment.go
package models

import "time"

// UserID identifies a platform account. Telegram hands these out as int64.
type UserID int64

// Money is an amount in the smallest unit of its currency. Telegram Stars
// have no fractional unit, so amount == number of stars. Never a float.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PreAuthRequest is the pre-checkout query the platform sends before it
// charges the user. Transient: it lives for one validation call only.
type PreAuthRequest struct {
	QueryID string `json:"queryId"`
	PayerID UserID `json:"payerId"`
	Amount  Money  `json:"amount"`
	Payload string `json:"payload"`
}

// CompletedPayment is the notification that funds were already transferred.
// ProviderChargeID is assigned by the payment provider and is unique per
// transaction; it is the idempotency key for everything downstream.
type CompletedPayment struct {
	PayerID          UserID `json:"payerId"`
	Amount           Money  `json:"amount"`
	Payload          string `json:"payload"`
	ProviderChargeID string `json:"providerChargeId"`
}

// PaymentStatus is the terminal state a completed payment ended up in.
type PaymentStatus string

const (
	PaymentStatusActivated PaymentStatus = "activated" // entitlement granted
	PaymentStatusRejected  PaymentStatus = "rejected"  // charged but withheld, needs reconciliation
	PaymentStatusDuplicate PaymentStatus = "duplicate" // replayed charge id, no second activation
)

// PaymentRecord is the ledger entry for one completed payment, keyed by
// ProviderChargeID so that reprocessing the same charge never double-writes.
type PaymentRecord struct {
	ProviderChargeID string        `json:"providerChargeId"`
	PayerID          UserID        `json:"payerId"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	RecordedAt       time.Time     `json:"recordedAt"`
}
