package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	kvOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_kv_operations_total",
			Help: "Key-value store operations by op and outcome.",
		},
		[]string{"op", "outcome"},
	)

	blobFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_blob_fallbacks_total",
			Help: "Stored blobs that failed to decode and degraded to defaults.",
		},
		[]string{"key"},
	)

	paymentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_payment_transitions_total",
			Help: "Payment status transitions by resulting status.",
		},
		[]string{"status"},
	)

	pendingRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vault_pending_license_requests",
		Help: "Pending license requests at the last badge read.",
	})
)

// Init registers core metrics in the default registry. Call once per process.
func Init() {
	prometheus.MustRegister(kvOps, blobFallbacks, paymentTransitions, pendingRequests)
}

// ObserveKVOp records one store operation and its outcome.
func ObserveKVOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	kvOps.WithLabelValues(op, outcome).Inc()
}

// ObserveBlobFallback records a stored value that degraded to its default.
func ObserveBlobFallback(key string) {
	blobFallbacks.WithLabelValues(key).Inc()
}

// ObservePaymentTransition records a payment reaching the given status.
func ObservePaymentTransition(status string) {
	paymentTransitions.WithLabelValues(status).Inc()
}

// SetPendingRequests publishes the badge count computed by the guard.
func SetPendingRequests(n int) {
	pendingRequests.Set(float64(n))
}
