// README: Prometheus metrics for the ride and settlement pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabcab", Name: "rides_requested_total", Help: "Total ride requests created"})
	RidesAcceptedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabcab", Name: "rides_accepted_total", Help: "Total rides accepted by drivers"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabcab", Name: "rides_cancelled_total", Help: "Total rides cancelled"})
	SettlementsTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabcab", Name: "settlements_total", Help: "Total ride settlements recorded"})
	CommissionCents     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabcab", Name: "commission_cents_total", Help: "Total commission collected in cents"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabcab", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cabcab",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
