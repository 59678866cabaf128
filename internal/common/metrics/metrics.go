// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PreAuthDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_preauth_decisions_total",
			Help: "Total number of pre-checkout queries answered, by decision",
		},
		[]string{"decision"},
	)

	CompletedPayments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_completed_total",
			Help: "Total number of completed-payment notifications, by outcome",
		},
		[]string{"outcome"},
	)

	PostChargeRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_post_charge_rejections_total",
			Help: "Completed payments rejected after the user was charged",
		},
	)

	EntitlementActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlement_activations_total",
			Help: "Total number of entitlement activations",
		},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "payment_handler_duration_seconds",
			Help: "Duration of payment event handling in seconds",
		},
		[]string{"handler"},
	)
)
