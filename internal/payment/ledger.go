// internal/payment/ledger.go
package payment

import (
	"context"
	"sync"

	"premium-bot/internal/models"
)

// Ledger records completed payments keyed by provider charge id. Record is
// the idempotency gate: the first write for a charge id wins, every replay
// reports created=false and must not trigger a second activation.
type Ledger interface {
	Record(ctx context.Context, rec models.PaymentRecord) (created bool, err error)
}

// MemoryLedger is the in-process reference backing.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]models.PaymentRecord
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		records: make(map[string]models.PaymentRecord),
	}
}

func (l *MemoryLedger) Record(_ context.Context, rec models.PaymentRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[rec.ProviderChargeID]; exists {
		return false, nil
	}
	l.records[rec.ProviderChargeID] = rec
	return true, nil
}

// Get returns the stored record for a charge id, if any.
func (l *MemoryLedger) Get(chargeID string) (models.PaymentRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[chargeID]
	return rec, ok
}
