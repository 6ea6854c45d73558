package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enrollment outcomes recorded by the sequencer.
const (
	EnrollmentEnrolled  = "enrolled"
	EnrollmentDuplicate = "duplicate"
	EnrollmentFull      = "full"
	EnrollmentNotFound  = "not_found"
	EnrollmentRejected  = "rejected"
	EnrollmentError     = "error"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Enrollments    *prometheus.CounterVec
	PaymentIntents *prometheus.CounterVec
	AuthFailures   *prometheus.CounterVec
	CatalogCache   *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "camp_enrollments_total",
			Help: "Payment completions processed by the enrollment sequencer, by outcome",
		}, []string{"result"}),
		PaymentIntents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "camp_payment_intents_total",
			Help: "Payment intents requested from the gateway, by outcome",
		}, []string{"result"}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "camp_auth_failures_total",
			Help: "Requests rejected by the access guard, by reason",
		}, []string{"reason"}),
		CatalogCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "camp_catalog_cache_lookups_total",
			Help: "Catalog listing cache lookups, by result",
		}, []string{"result"}),
	}
}

// ObserveEnrollment counts one sequencer outcome.
func (m *Metrics) ObserveEnrollment(result string) {
	if m == nil {
		return
	}
	m.Enrollments.WithLabelValues(result).Inc()
}

// ObservePaymentIntent counts one gateway call.
func (m *Metrics) ObservePaymentIntent(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.PaymentIntents.WithLabelValues(result).Inc()
}

// ObserveAuthFailure counts one guard rejection.
func (m *Metrics) ObserveAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// ObserveCacheLookup counts one catalog cache lookup.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CatalogCache.WithLabelValues(result).Inc()
}
