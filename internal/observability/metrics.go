package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	requestTransitionsTotal *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	pushDeliveriesTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_request_transitions_total",
			Help: "Total number of service request lifecycle transitions applied.",
		}, []string{"transition"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		pushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_push_deliveries_total",
			Help: "Total number of acceptance push deliveries, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(requestTransitionsTotal, httpLatencySeconds, httpErrorsTotal, pushDeliveriesTotal)
	})
}

// RequestTransitions exposes the counter for lifecycle transitions.
func RequestTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return requestTransitionsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// PushDeliveries exposes the counter for push delivery outcomes.
func PushDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return pushDeliveriesTotal
}
