// internal/payment/validator_test.go
package payment

import (
	"testing"

	"premium-bot/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func testPolicy() Policy {
	return Policy{
		RequiredCurrency: "XTR",
		MinAmount:        1,
		MaxAmount:        2500,
		PayloadPrefix:    "premium_",
	}
}

func preAuth(payerID int64, amount int64, currency, payload string) models.PreAuthRequest {
	return models.PreAuthRequest{
		QueryID: "q-1",
		PayerID: models.UserID(payerID),
		Amount:  models.Money{Amount: amount, Currency: currency},
		Payload: payload,
	}
}

// ==========================
// Pre-Authorization Tests
// ==========================

func TestValidatePreAuth(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name     string
		req      models.PreAuthRequest
		wantOK   bool
		wantHint string
	}{
		{
			name:   "valid request",
			req:    preAuth(42, 10, "XTR", "premium_42_1day"),
			wantOK: true,
		},
		{
			name:     "wrong currency",
			req:      preAuth(42, 10, "USD", "premium_42_1day"),
			wantOK:   false,
			wantHint: "currency",
		},
		{
			name:     "currency comparison is case-sensitive",
			req:      preAuth(42, 10, "xtr", "premium_42_1day"),
			wantOK:   false,
			wantHint: "currency",
		},
		{
			name:   "amount at lower bound accepted",
			req:    preAuth(42, 1, "XTR", "premium_42_1day"),
			wantOK: true,
		},
		{
			name:   "amount at upper bound accepted",
			req:    preAuth(42, 2500, "XTR", "premium_42_1day"),
			wantOK: true,
		},
		{
			name:     "amount below lower bound rejected",
			req:      preAuth(42, 0, "XTR", "premium_42_1day"),
			wantOK:   false,
			wantHint: "range",
		},
		{
			name:     "amount above upper bound rejected",
			req:      preAuth(42, 2501, "XTR", "premium_42_1day"),
			wantOK:   false,
			wantHint: "range",
		},
		{
			name:     "foreign payload prefix",
			req:      preAuth(42, 10, "XTR", "giftpack_42_1day"),
			wantOK:   false,
			wantHint: "product",
		},
		{
			name:     "payload minted for another user",
			req:      preAuth(42, 10, "XTR", "premium_99_1day"),
			wantOK:   false,
			wantHint: "user",
		},
		{
			name:     "empty payload",
			req:      preAuth(42, 10, "XTR", ""),
			wantOK:   false,
			wantHint: "product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.ValidatePreAuth(tt.req)
			assert.Equal(t, tt.wantOK, got.OK)
			if tt.wantOK {
				assert.Empty(t, got.Reason)
			} else {
				assert.Contains(t, got.Reason, tt.wantHint)
			}
		})
	}
}

// ==========================
// Completed-Payment Tests
// ==========================

func TestValidateCompleted(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name   string
		pay    models.CompletedPayment
		wantOK bool
	}{
		{
			name: "valid payment",
			pay: models.CompletedPayment{
				PayerID:          42,
				Amount:           models.Money{Amount: 10, Currency: "XTR"},
				Payload:          "premium_42_1day",
				ProviderChargeID: "ch_1",
			},
			wantOK: true,
		},
		{
			name: "wrong currency after charge",
			pay: models.CompletedPayment{
				PayerID:          42,
				Amount:           models.Money{Amount: 10, Currency: "USD"},
				Payload:          "premium_42_1day",
				ProviderChargeID: "ch_2",
			},
			wantOK: false,
		},
		{
			name: "amount out of bounds after charge",
			pay: models.CompletedPayment{
				PayerID:          42,
				Amount:           models.Money{Amount: 5000, Currency: "XTR"},
				Payload:          "premium_42_1day",
				ProviderChargeID: "ch_3",
			},
			wantOK: false,
		},
		{
			name: "payload bound to another user",
			pay: models.CompletedPayment{
				PayerID:          42,
				Amount:           models.Money{Amount: 10, Currency: "XTR"},
				Payload:          "premium_99_1day",
				ProviderChargeID: "ch_4",
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.ValidateCompleted(tt.pay)
			assert.Equal(t, tt.wantOK, got.OK)
		})
	}
}

func TestBuildPayload(t *testing.T) {
	policy := testPolicy()

	payload := policy.BuildPayload(models.UserID(42), 1)
	assert.Equal(t, "premium_42_1day", payload)

	// A freshly built payload always passes its own pre-auth binding check.
	got := policy.ValidatePreAuth(preAuth(42, 10, "XTR", payload))
	assert.True(t, got.OK)
}
