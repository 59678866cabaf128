// internal/audit/elasticsearch.go

// Package audit keeps a searchable trail of terminal payment outcomes.
// Support works off this index when reconciling post-charge rejections and
// replayed charges. Indexing is best-effort and never blocks the payment
// path on a cluster problem.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"premium-bot/internal/common/logger"
	"premium-bot/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

// Document is one indexed payment outcome.
type Document struct {
	ID               string `json:"id"`
	ProviderChargeID string `json:"providerChargeId"`
	PayerID          int64  `json:"payerId"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Reason           string `json:"reason,omitempty"`
	RecordedAt       string `json:"recordedAt"`
}

// Elasticsearch indexes payment outcomes into a single index.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewElasticsearch creates an auditor over an existing client.
func NewElasticsearch(client *elasticsearch.Client, index string, log logger.Logger) *Elasticsearch {
	return &Elasticsearch{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

func (a *Elasticsearch) RecordOutcome(ctx context.Context, rec models.PaymentRecord, reason string) {
	doc := Document{
		ID:               uuid.NewString(),
		ProviderChargeID: rec.ProviderChargeID,
		PayerID:          int64(rec.PayerID),
		Amount:           rec.Amount,
		Currency:         rec.Currency,
		Status:           string(rec.Status),
		Reason:           reason,
		RecordedAt:       rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		a.logger.WithError(err).Error("failed to encode audit document", nil)
		return
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(doc.ID),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		a.logger.WithError(err).Error("audit index request failed", map[string]interface{}{
			"providerChargeId": rec.ProviderChargeID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		a.logger.Error("audit index rejected document", map[string]interface{}{
			"providerChargeId": rec.ProviderChargeID,
			"status":           res.Status(),
		})
		return
	}

	a.logger.Debug("audit document indexed", map[string]interface{}{
		"documentId":       doc.ID,
		"providerChargeId": rec.ProviderChargeID,
		"outcome":          doc.Status,
	})
}
