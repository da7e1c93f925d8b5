// Package metrics holds the Prometheus collectors for HTTP traffic and claim
// workflow transitions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Claim transition labels.
const (
	TransitionCreated      = "created"
	TransitionApproved     = "approved"
	TransitionRejected     = "rejected"
	TransitionAutoRejected = "auto_rejected"
	TransitionDeleted      = "deleted"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "najdeno_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	claimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_claim_transitions_total",
		Help: "Claim request transitions by kind",
	}, []string{"transition"})

	itemOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "najdeno_item_operations_total",
		Help: "Item writes by operation",
	}, []string{"operation"})
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveClaim counts n claim request transitions of the given kind.
func ObserveClaim(transition string, n int) {
	if n <= 0 {
		return
	}
	claimTransitions.WithLabelValues(transition).Add(float64(n))
}

// ObserveItem counts an item write.
func ObserveItem(operation string) {
	itemOperations.WithLabelValues(operation).Inc()
}
