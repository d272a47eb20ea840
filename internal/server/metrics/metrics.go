// Package metrics holds the Prometheus instruments for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters and histograms exported on /metrics.
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec
	UsersRegistered  prometheus.Counter
	RecordsSaved     prometheus.Counter
	SavesFailed      *prometheus.CounterVec
	SaveDuration     prometheus.Histogram
	ValidationChecks prometheus.Counter
}

// New creates and registers all instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "policykeeper_login_attempts_total",
			Help: "Login attempts, partitioned by result.",
		}, []string{"result"}),
		UsersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "policykeeper_users_registered_total",
			Help: "Credentials successfully registered.",
		}),
		RecordsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "policykeeper_records_saved_total",
			Help: "Policy records successfully persisted.",
		}),
		SavesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "policykeeper_saves_failed_total",
			Help: "Failed save attempts, partitioned by reason.",
		}, []string{"reason"}),
		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "policykeeper_save_duration_seconds",
			Help:    "Wall time of persistence calls.",
			Buckets: prometheus.DefBuckets,
		}),
		ValidationChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "policykeeper_validation_checks_total",
			Help: "Validation passes over candidate records.",
		}),
	}
}
