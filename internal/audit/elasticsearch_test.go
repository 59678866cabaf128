// internal/audit/elasticsearch_test.go
package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"premium-bot/internal/common/logger"
	"premium-bot/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingTransport intercepts the ES HTTP layer so no cluster is needed.
type capturingTransport struct {
	requests []*http.Request
	bodies   []string
	status   int
}

func (t *capturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		t.bodies = append(t.bodies, string(b))
	} else {
		t.bodies = append(t.bodies, "")
	}

	status := t.status
	if status == 0 {
		status = http.StatusCreated
	}
	return &http.Response{
		StatusCode: status,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(`{}`)),
	}, nil
}

func newTestAuditor(t *testing.T, transport *capturingTransport) *Elasticsearch {
	t.Helper()

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)

	return NewElasticsearch(client, "payment-audit", logger.NewTestLogger(t))
}

func TestRecordOutcome_IndexesDocument(t *testing.T) {
	transport := &capturingTransport{}
	auditor := newTestAuditor(t, transport)

	auditor.RecordOutcome(context.Background(), models.PaymentRecord{
		ProviderChargeID: "ch_1",
		PayerID:          42,
		Amount:           10,
		Currency:         "XTR",
		Status:           models.PaymentStatusRejected,
		RecordedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, "unsupported currency")

	require.Len(t, transport.requests, 1)
	assert.Contains(t, transport.requests[0].URL.Path, "/payment-audit/")

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(transport.bodies[0]), &doc))
	assert.Equal(t, "ch_1", doc.ProviderChargeID)
	assert.Equal(t, int64(42), doc.PayerID)
	assert.Equal(t, "rejected", doc.Status)
	assert.Equal(t, "unsupported currency", doc.Reason)
	assert.NotEmpty(t, doc.ID)
}

func TestRecordOutcome_ClusterErrorDoesNotPanic(t *testing.T) {
	transport := &capturingTransport{status: http.StatusServiceUnavailable}
	auditor := newTestAuditor(t, transport)

	assert.NotPanics(t, func() {
		auditor.RecordOutcome(context.Background(), models.PaymentRecord{
			ProviderChargeID: "ch_2",
			PayerID:          42,
			Amount:           10,
			Currency:         "XTR",
			Status:           models.PaymentStatusDuplicate,
			RecordedAt:       time.Now(),
		}, "duplicate provider charge id")
	})
}
