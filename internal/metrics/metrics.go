package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for APICallsTotal.
const (
	OutcomeOK          = "ok"
	OutcomeAPIError    = "api_error"
	OutcomeTransport   = "transport_error"
	OutcomeDecodeError = "decode_error"
	OutcomeBreakerOpen = "breaker_open"
	OutcomeCancelled   = "cancelled"
)

var (
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdesk_api_calls_total",
			Help: "Total weather backend API calls",
		},
		[]string{"endpoint", "outcome"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherdesk_api_latency_seconds",
			Help:    "Weather backend API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdesk_stale_responses_discarded_total",
			Help: "Responses dropped because a newer request superseded them",
		},
		[]string{"panel"},
	)
)
