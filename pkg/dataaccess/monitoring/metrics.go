package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency is the duration of store queries.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_store_latency",
			Help: "Duration of store queries",
		},
		[]string{"backend", "dal", "query", "collection"},
	)

	// StoreTotalRequests is the total number of store requests.
	StoreTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_total_requests",
			Help: "Total number of store requests",
		},
		[]string{"backend", "dal", "query", "collection"},
	)

	// StoreErrors is the total number of failed store requests.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_errors",
			Help: "Total number of failed store requests",
		},
		[]string{"backend", "dal", "query", "collection"},
	)
)

// Observe counts a request and starts its latency timer. Call the returned function once the request is done.
func Observe(backend, dal, query, collection string) func() {
	StoreTotalRequests.WithLabelValues(backend, dal, query, collection).Inc()
	t := prometheus.NewTimer(StoreLatency.WithLabelValues(backend, dal, query, collection))
	return func() {
		t.ObserveDuration()
	}
}

// Failed counts a failed request.
func Failed(backend, dal, query, collection string) {
	StoreErrors.WithLabelValues(backend, dal, query, collection).Inc()
}
