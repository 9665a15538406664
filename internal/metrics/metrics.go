package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"endpoint", "status"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		},
		[]string{"method", "code"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Bookings entering a status.",
		},
		[]string{"status"},
	)

	bookingQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_queries_total",
			Help:      "Booking list queries by role and state.",
		},
		[]string{"role", "state"},
	)

	aggregationBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_aggregation_batch_size",
			Help:      "Number of items resolved per batched availability lookup.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, grpcRequests, bookingTransitions, bookingQueries, aggregationBatchSize)
	})
}

func IncHTTP(endpoint string, status int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func IncGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncBookingQuery(role, state string) {
	bookingQueries.WithLabelValues(role, state).Inc()
}

func ObserveAggregationBatch(size int) {
	aggregationBatchSize.Observe(float64(size))
}
