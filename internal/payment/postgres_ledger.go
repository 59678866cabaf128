// internal/payment/postgres_ledger.go
package payment

import (
	"context"
	"database/sql"
	"fmt"

	"premium-bot/internal/models"
)

// PostgresLedger persists payment records. The primary key on
// provider_charge_id makes Record idempotent: a replayed charge inserts
// zero rows.
//
// Expected table:
//
//	CREATE TABLE payment_records (
//	    provider_charge_id TEXT PRIMARY KEY,
//	    payer_id           BIGINT NOT NULL,
//	    amount             BIGINT NOT NULL,
//	    currency           TEXT NOT NULL,
//	    status             TEXT NOT NULL,
//	    recorded_at        TIMESTAMPTZ NOT NULL
//	);
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a ledger over an existing connection pool.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Record(ctx context.Context, rec models.PaymentRecord) (bool, error) {
	query := `INSERT INTO payment_records
		(provider_charge_id, payer_id, amount, currency, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider_charge_id) DO NOTHING`

	res, err := l.db.ExecContext(ctx, query,
		rec.ProviderChargeID, int64(rec.PayerID), rec.Amount, rec.Currency, string(rec.Status), rec.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert payment record: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}
