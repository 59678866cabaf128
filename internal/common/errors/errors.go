// Package errors provides standardized error handling for the payment
// lifecycle. Every handler converts whatever went wrong into a StandardError
// before it crosses the gateway boundary; nothing panics across it.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Policy rejections. Never retried, never fatal.
	ErrCodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	// The user was already charged when validation failed. Must be routed
	// to reconciliation, never silently dropped.
	ErrCodePostChargeRejected ErrorCode = "POST_CHARGE_REJECTED"

	// Same provider charge id seen again. Not an incident, but worth a record.
	ErrCodeDuplicateCharge ErrorCode = "DUPLICATE_CHARGE"

	// Talking to the messaging platform failed. Logged, surfaced best-effort,
	// never retried by the core.
	ErrCodeGatewaySendFailed ErrorCode = "GATEWAY_SEND_FAILED"

	// Downstream store failures. Terminal for the single event being handled.
	ErrCodeEntitlementStoreFailed ErrorCode = "ENTITLEMENT_STORE_FAILED"
	ErrCodeLedgerWriteFailed      ErrorCode = "LEDGER_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationRejectedError creates a non-retryable policy rejection.
func NewValidationRejectedError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationRejected,
		Message:   "Payment failed policy validation",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPostChargeRejectedError creates the most sensitive error: funds were
// taken but the entitlement is withheld.
func NewPostChargeRejectedError(chargeID, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodePostChargeRejected,
		Message:   "Completed payment failed validation after charge",
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"providerChargeId": chargeID},
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateChargeError marks a replayed provider charge id.
func NewDuplicateChargeError(chargeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateCharge,
		Message:   "Provider charge id already processed",
		Details:   fmt.Sprintf("providerChargeId: %s", chargeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewaySendFailedError wraps a messaging platform API failure.
func NewGatewaySendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewaySendFailed,
		Message:   "Failed to deliver response via messaging gateway",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntitlementStoreFailedError wraps an entitlement store failure.
func NewEntitlementStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntitlementStoreFailed,
		Message:   "Entitlement store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteFailedError wraps a payment ledger failure.
func NewLedgerWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Payment ledger write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected caught at a handler boundary.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationRejected:
		return "validation"
	case ErrCodePostChargeRejected, ErrCodeDuplicateCharge:
		return "reconciliation"
	case ErrCodeGatewaySendFailed:
		return "gateway"
	case ErrCodeEntitlementStoreFailed, ErrCodeLedgerWriteFailed:
		return "storage"
	default:
		return "internal"
	}
}

// IsReconciliationRequired reports whether the error must reach a human.
func IsReconciliationRequired(code ErrorCode) bool {
	return code == ErrCodePostChargeRejected
}
