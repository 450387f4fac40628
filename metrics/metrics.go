package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RegistrationsTotal  *prometheus.CounterVec
	ErrorsHandledTotal  *prometheus.CounterVec
	PasswordHashSeconds prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		ErrorsHandledTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_errors_handled_total",
			Help: "Errors rendered by the error responder, by handler and route",
		}, []string{"handler", "route"}),
		PasswordHashSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "accounts_password_hash_seconds",
			Help:    "Latency of password hashing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
	}
}

func (m *Metrics) IncRegistration(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrorHandled(handler, route string) {
	if m == nil {
		return
	}
	m.ErrorsHandledTotal.WithLabelValues(handler, route).Inc()
}

func (m *Metrics) ObserveHash(d time.Duration) {
	if m == nil {
		return
	}
	m.PasswordHashSeconds.Observe(d.Seconds())
}
