package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OffersSent counts offers successfully dispatched.
	OffersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beautybook_offers_sent_total",
			Help: "Total number of offers dispatched successfully",
		},
	)

	// OffersRejected counts sends stopped by policy or dispatch failure,
	// labelled by reason class.
	OffersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautybook_offers_rejected_total",
			Help: "Total number of offer sends that did not complete",
		},
		[]string{"reason"},
	)

	// DispatchAttempts counts WhatsApp dispatch attempts by provider and outcome.
	DispatchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beautybook_whatsapp_dispatch_total",
			Help: "Total number of WhatsApp dispatch attempts",
		},
		[]string{"provider", "outcome"},
	)

	// DispatchDuration tracks outbound dispatch latency.
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "beautybook_whatsapp_dispatch_duration_seconds",
			Help:    "WhatsApp dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BatchRuns counts automated offer batch executions.
	BatchRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beautybook_offer_batch_runs_total",
			Help: "Total number of automated offer batch runs",
		},
	)
)
