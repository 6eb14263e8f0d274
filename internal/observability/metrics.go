package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	streamConnectionsTotal prometheus.Counter
	annotationEventsTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		streamConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_connections_total",
			Help: "Total number of websocket connections accepted on the annotation stream.",
		})

		annotationEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotation_events_total",
			Help: "Total number of annotation change events delivered, by event type.",
		}, []string{"type"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, streamConnectionsTotal, annotationEventsTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// StreamConnectionsTotal exposes the counter for accepted stream connections.
func StreamConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return streamConnectionsTotal
}

// AnnotationEventsTotal exposes the per-type counter for annotation events.
func AnnotationEventsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return annotationEventsTotal
}
