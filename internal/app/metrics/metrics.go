package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lab_order",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Total number of remote store calls by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lab_order",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Duration of remote store calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"action"},
	)

	cartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lab_order",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Total number of cart mutations by operation.",
		},
		[]string{"op"},
	)

	orderSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lab_order",
			Subsystem: "orders",
			Name:      "submissions_total",
			Help:      "Order submissions by result (ok, rejected, failed).",
		},
		[]string{"result"},
	)
)

// Remote call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeAPI       = "api_error"
)

func init() {
	Registry.MustRegister(
		remoteRequests,
		remoteDuration,
		cartMutations,
		orderSubmissions,
	)
}

// RecordRemoteCall records one remote store call.
func RecordRemoteCall(action, outcome string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	remoteRequests.WithLabelValues(action, outcome).Inc()
	remoteDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordCartMutation counts a persisted cart change.
func RecordCartMutation(op string) {
	cartMutations.WithLabelValues(op).Inc()
}

// RecordOrderSubmission counts an order submission attempt.
func RecordOrderSubmission(result string) {
	orderSubmissions.WithLabelValues(result).Inc()
}

// RemoteRequests exposes the remote call counter for a label pair. Tests only.
func RemoteRequests(action, outcome string) prometheus.Counter {
	return remoteRequests.WithLabelValues(action, outcome)
}

// CartMutations exposes the cart mutation counter for op. Tests only.
func CartMutations(op string) prometheus.Counter {
	return cartMutations.WithLabelValues(op)
}

// OrderSubmissions exposes the submission counter for result. Tests only.
func OrderSubmissions(result string) prometheus.Counter {
	return orderSubmissions.WithLabelValues(result)
}
