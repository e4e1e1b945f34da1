package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts credential operations by outcome. Labels use stable result
// names, never raw error strings.
type Metrics struct {
	Signups           *prometheus.CounterVec
	Logins            *prometheus.CounterVec
	Refreshes         *prometheus.CounterVec
	Logouts           prometheus.Counter
	RotationConflicts prometheus.Counter
}

// NewMetrics registers the counters on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Signups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credo_signups_total",
			Help: "Signup attempts by result.",
		}, []string{"result"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credo_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credo_refreshes_total",
			Help: "Refresh attempts by result.",
		}, []string{"result"}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "credo_logouts_total",
			Help: "Logout requests.",
		}),
		RotationConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "credo_rotation_conflicts_total",
			Help: "Refresh rotations lost to a concurrent winner or replayed after one.",
		}),
	}
}
