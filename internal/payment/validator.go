// internal/payment/validator.go

// Package payment implements the payment validation and entitlement
// lifecycle: the pre-authorization decision, the post-payment activation
// transition and the idempotent ledger behind it.
package payment

import (
	"fmt"
	"strconv"
	"strings"

	"premium-bot/internal/common/config"
	"premium-bot/internal/models"
)

// Policy is the fixed validation policy. Values come from configuration,
// never from code.
type Policy struct {
	RequiredCurrency string
	MinAmount        int64
	MaxAmount        int64
	PayloadPrefix    string
}

// PolicyFromConfig builds a Policy from the loaded configuration section.
func PolicyFromConfig(cfg config.PolicyConfig) Policy {
	return Policy{
		RequiredCurrency: cfg.RequiredCurrency,
		MinAmount:        cfg.MinAmount,
		MaxAmount:        cfg.MaxAmount,
		PayloadPrefix:    cfg.PayloadPrefix,
	}
}

// Decision is an explicit accept/reject result. Reason is a single
// human-readable message, empty on accept.
type Decision struct {
	OK     bool
	Reason string
}

func Accept() Decision {
	return Decision{OK: true}
}

func Reject(reason string) Decision {
	return Decision{OK: false, Reason: reason}
}

// BuildPayload produces the invoice payload token that binds a later
// completed payment back to its originating user and duration, e.g.
// "premium_42_1day".
func (p Policy) BuildPayload(userID models.UserID, durationDays int) string {
	return fmt.Sprintf("%s%d_%dday", p.PayloadPrefix, userID, durationDays)
}

// ValidatePreAuth classifies a pre-checkout query before the provider
// charges the user. Bounds are inclusive on both ends, currency comparison
// is exact and case-sensitive.
func (p Policy) ValidatePreAuth(req models.PreAuthRequest) Decision {
	if req.Amount.Currency != p.RequiredCurrency {
		return Reject(fmt.Sprintf("unsupported currency %q, expected %q", req.Amount.Currency, p.RequiredCurrency))
	}
	if req.Amount.Amount < p.MinAmount || req.Amount.Amount > p.MaxAmount {
		return Reject(fmt.Sprintf("amount %d outside allowed range [%d, %d]", req.Amount.Amount, p.MinAmount, p.MaxAmount))
	}
	if !strings.HasPrefix(req.Payload, p.PayloadPrefix) {
		return Reject("payload does not belong to this product")
	}
	// Containment against the stringified user id. Weak, but it stops a
	// payload minted for a different user from passing.
	if !strings.Contains(req.Payload, strconv.FormatInt(int64(req.PayerID), 10)) {
		return Reject("payload does not match the paying user")
	}
	return Accept()
}

// ValidateCompleted classifies a payment after the user has already been
// charged. Rejection here never rolls anything back, it only withholds the
// entitlement. The payload binding is re-checked so a forged or replayed
// notification cannot activate on someone else's token.
func (p Policy) ValidateCompleted(pay models.CompletedPayment) Decision {
	if pay.Amount.Currency != p.RequiredCurrency {
		return Reject(fmt.Sprintf("unsupported currency %q, expected %q", pay.Amount.Currency, p.RequiredCurrency))
	}
	if pay.Amount.Amount < p.MinAmount || pay.Amount.Amount > p.MaxAmount {
		return Reject(fmt.Sprintf("amount %d outside allowed range [%d, %d]", pay.Amount.Amount, p.MinAmount, p.MaxAmount))
	}
	if !strings.HasPrefix(pay.Payload, p.PayloadPrefix) {
		return Reject("payload does not belong to this product")
	}
	if !strings.Contains(pay.Payload, strconv.FormatInt(int64(pay.PayerID), 10)) {
		return Reject("payload does not match the paying user")
	}
	return Accept()
}
