// internal/payment/coordinator.go
package payment

import (
	"context"
	"fmt"
	"time"

	"premium-bot/internal/common/config"
	stderrors "premium-bot/internal/common/errors"
	"premium-bot/internal/common/logger"
	"premium-bot/internal/common/metrics"
	"premium-bot/internal/common/observability"
	"premium-bot/internal/entitlement"
	"premium-bot/internal/models"

	"go.opentelemetry.io/otel/trace"
)

// User-facing outcome messages. The gateway renders these verbatim.
const (
	msgActivated        = "Premium activated until %s."
	msgAlreadyProcessed = "This payment was already processed. Your premium is unchanged."
	msgPostChargeReject = "We could not validate your payment. Please contact support."
	msgInternalFailure  = "Something went wrong while processing your payment. Please contact support."
)

// ReconciliationAlerter receives payments that were charged but rejected.
// Implementations must not block the payment path on delivery failures.
type ReconciliationAlerter interface {
	PostChargeRejection(ctx context.Context, pay models.CompletedPayment, reason string)
}

// AuditSink records every terminal payment outcome for later search.
type AuditSink interface {
	RecordOutcome(ctx context.Context, rec models.PaymentRecord, reason string)
}

// Coordinator orchestrates the payment lifecycle: it answers pre-checkout
// queries, turns accepted completed payments into entitlement activations
// exactly once per charge id, and answers status queries. Every handler is
// terminal for its single event; nothing here retries.
type Coordinator struct {
	policy       Policy
	durationDays int
	store        entitlement.Store
	ledger       Ledger
	alerter      ReconciliationAlerter
	audit        AuditSink
	obs          *observability.Observability
	logger       logger.Logger
}

// NewCoordinator wires the lifecycle. alerter, audit and obs may be nil.
func NewCoordinator(
	policyCfg config.PolicyConfig,
	store entitlement.Store,
	ledger Ledger,
	alerter ReconciliationAlerter,
	audit AuditSink,
	obs *observability.Observability,
	log logger.Logger,
) *Coordinator {
	return &Coordinator{
		policy:       PolicyFromConfig(policyCfg),
		durationDays: policyCfg.DurationDays,
		store:        store,
		ledger:       ledger,
		alerter:      alerter,
		audit:        audit,
		obs:          obs,
		logger:       log.WithFields(map[string]interface{}{"component": "coordinator"}),
	}
}

// Policy exposes the active policy, mainly so the gateway can build payloads.
func (c *Coordinator) Policy() Policy {
	return c.policy
}

// DurationDays is the entitlement length granted per accepted payment.
func (c *Coordinator) DurationDays() int {
	return c.durationDays
}

// HandlePreAuth answers a pre-checkout query. The platform auto-rejects an
// unanswered query after its own timeout, so this must produce exactly one
// decision per call; an internal panic degrades to a generic reject.
func (c *Coordinator) HandlePreAuth(ctx context.Context, req models.PreAuthRequest) (decision models.PreAuthDecision) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "payment.preauth")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in pre-auth handler", map[string]interface{}{
				"queryId": req.QueryID,
				"panic":   fmt.Sprint(r),
			})
			decision = models.PreAuthDecision{OK: false, Reason: "payment validation unavailable"}
		}
		c.finishEvent(ctx, "preauth", decisionLabel(decision.OK), start)
	}()

	v := c.policy.ValidatePreAuth(req)
	if !v.OK {
		c.logger.Warn("pre-auth rejected", map[string]interface{}{
			"queryId": req.QueryID,
			"payerId": req.PayerID,
			"amount":  req.Amount.Amount,
			"reason":  v.Reason,
		})
		return models.PreAuthDecision{OK: false, Reason: v.Reason}
	}

	c.logger.Info("pre-auth approved", map[string]interface{}{
		"queryId": req.QueryID,
		"payerId": req.PayerID,
		"amount":  req.Amount.Amount,
	})
	return models.PreAuthDecision{OK: true}
}

// HandleCompletedPayment processes a successful-payment notification. The
// ledger write comes first so a replayed charge id can never activate twice;
// a validation failure at this point means the user already paid, which is
// routed to alerting and audit instead of being silently dropped.
func (c *Coordinator) HandleCompletedPayment(ctx context.Context, pay models.CompletedPayment) (outcome models.ActivationOutcome) {
	start := time.Now()
	ctx, span := c.startSpan(ctx, "payment.completed")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in completed-payment handler", map[string]interface{}{
				"providerChargeId": pay.ProviderChargeID,
				"panic":            fmt.Sprint(r),
			})
			outcome = models.ActivationOutcome{OK: false, Message: msgInternalFailure}
		}
		c.finishEvent(ctx, "completed", outcomeLabel(outcome), start)
	}()

	log := c.logger.WithFields(map[string]interface{}{
		"providerChargeId": pay.ProviderChargeID,
		"payerId":          pay.PayerID,
		"amount":           pay.Amount.Amount,
		"currency":         pay.Amount.Currency,
	})

	v := c.policy.ValidateCompleted(pay)
	if !v.OK {
		return c.rejectPostCharge(ctx, pay, v.Reason, log)
	}

	created, err := c.ledger.Record(ctx, models.PaymentRecord{
		ProviderChargeID: pay.ProviderChargeID,
		PayerID:          pay.PayerID,
		Amount:           pay.Amount.Amount,
		Currency:         pay.Amount.Currency,
		Status:           models.PaymentStatusActivated,
		RecordedAt:       time.Now().UTC(),
	})
	if err != nil {
		stdErr := stderrors.NewLedgerWriteFailedError(err)
		log.WithError(stdErr).Error("ledger write failed", nil)
		return models.ActivationOutcome{OK: false, Message: msgInternalFailure}
	}

	if !created {
		// Replayed charge id: the user holds whatever the first delivery
		// granted, only the duplicate write is suppressed.
		log.Warn("duplicate charge id, skipping activation", map[string]interface{}{
			"errorCode": string(stderrors.ErrCodeDuplicateCharge),
		})
		c.recordAudit(ctx, pay, models.PaymentStatusDuplicate, "duplicate provider charge id")

		expiry, expErr := c.store.ExpiryOf(ctx, pay.PayerID)
		if expErr != nil {
			log.WithError(expErr).Error("expiry lookup failed after duplicate", nil)
		}
		return models.ActivationOutcome{
			OK:               true,
			AlreadyProcessed: true,
			ExpiresAt:        expiry,
			Message:          msgAlreadyProcessed,
		}
	}

	expiresAt, err := c.store.Activate(ctx, pay.PayerID, c.durationDays)
	if err != nil {
		stdErr := stderrors.NewEntitlementStoreFailedError(err)
		log.WithError(stdErr).Error("activation failed after ledger write", nil)
		c.recordAudit(ctx, pay, models.PaymentStatusRejected, "entitlement store failure")
		return models.ActivationOutcome{OK: false, Message: msgInternalFailure}
	}

	metrics.EntitlementActivations.Inc()
	c.recordAudit(ctx, pay, models.PaymentStatusActivated, "")

	log.Info("entitlement activated", map[string]interface{}{
		"expiresAt":    expiresAt,
		"durationDays": c.durationDays,
	})
	return models.ActivationOutcome{
		OK:        true,
		ExpiresAt: &expiresAt,
		Message:   fmt.Sprintf(msgActivated, expiresAt.UTC().Format("2006-01-02 15:04")),
	}
}

// QueryStatus answers an entitlement-status query.
func (c *Coordinator) QueryStatus(ctx context.Context, userID models.UserID) (models.StatusReport, error) {
	active, err := c.store.IsActive(ctx, userID)
	if err != nil {
		return models.StatusReport{}, stderrors.NewEntitlementStoreFailedError(err)
	}
	expiry, err := c.store.ExpiryOf(ctx, userID)
	if err != nil {
		return models.StatusReport{}, stderrors.NewEntitlementStoreFailedError(err)
	}
	return models.StatusReport{Active: active, ExpiresAt: expiry}, nil
}

// rejectPostCharge handles the most sensitive path: funds were taken but the
// payment failed validation. No rollback exists; the outcome is withheld
// activation plus a distinguishable alert for manual reconciliation.
func (c *Coordinator) rejectPostCharge(ctx context.Context, pay models.CompletedPayment, reason string, log logger.Logger) models.ActivationOutcome {
	stdErr := stderrors.NewPostChargeRejectedError(pay.ProviderChargeID, reason)
	log.Error("payment rejected after charge", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  stderrors.GetErrorCategory(stdErr.Code),
		"reason":    reason,
	})

	metrics.PostChargeRejections.Inc()

	if _, err := c.ledger.Record(ctx, models.PaymentRecord{
		ProviderChargeID: pay.ProviderChargeID,
		PayerID:          pay.PayerID,
		Amount:           pay.Amount.Amount,
		Currency:         pay.Amount.Currency,
		Status:           models.PaymentStatusRejected,
		RecordedAt:       time.Now().UTC(),
	}); err != nil {
		log.WithError(err).Error("failed to record rejected payment", nil)
	}

	if c.alerter != nil {
		c.alerter.PostChargeRejection(ctx, pay, reason)
	}
	c.recordAudit(ctx, pay, models.PaymentStatusRejected, reason)

	return models.ActivationOutcome{OK: false, Message: msgPostChargeReject}
}

func (c *Coordinator) recordAudit(ctx context.Context, pay models.CompletedPayment, status models.PaymentStatus, reason string) {
	if c.audit == nil {
		return
	}
	c.audit.RecordOutcome(ctx, models.PaymentRecord{
		ProviderChargeID: pay.ProviderChargeID,
		PayerID:          pay.PayerID,
		Amount:           pay.Amount.Amount,
		Currency:         pay.Amount.Currency,
		Status:           status,
		RecordedAt:       time.Now().UTC(),
	}, reason)
}

func (c *Coordinator) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if c.obs != nil {
		return c.obs.StartSpan(ctx, name)
	}
	// SpanFromContext yields a no-op span when tracing is off.
	return ctx, trace.SpanFromContext(ctx)
}

func (c *Coordinator) finishEvent(ctx context.Context, handler, status string, start time.Time) {
	elapsed := time.Since(start)
	metrics.HandlerDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
	switch handler {
	case "preauth":
		metrics.PreAuthDecisions.WithLabelValues(status).Inc()
	case "completed":
		metrics.CompletedPayments.WithLabelValues(status).Inc()
	}
	if c.obs != nil {
		c.obs.RecordEventProcessed(ctx, handler, status)
		c.obs.RecordEventDuration(ctx, handler, elapsed)
	}
}

func decisionLabel(ok bool) string {
	if ok {
		return "approved"
	}
	return "rejected"
}

func outcomeLabel(out models.ActivationOutcome) string {
	switch {
	case out.AlreadyProcessed:
		return "duplicate"
	case out.OK:
		return "activated"
	default:
		return "rejected"
	}
}
