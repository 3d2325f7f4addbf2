package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MembershipOperations counts team membership mutations by operation and result.
	MembershipOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmate_membership_operations_total",
			Help: "Total number of team membership operations",
		},
		[]string{"operation", "result"},
	)

	// RegistrationClosures counts hackathons whose registration was closed by the
	// lifecycle trigger after reaching their team cap.
	RegistrationClosures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackmate_registration_closures_total",
			Help: "Total number of automatic registration closures",
		},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmate_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackmate_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
