package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for certificate issuance.
type Metrics struct {
	// Issuance outcomes: issued, rejected, pending_verification
	Outcomes *prometheus.CounterVec

	// Hours certified per issued certificate
	CertifiedHours prometheus.Histogram
}

// New creates a new Metrics instance with all credential metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vms_certificate_requests_total",
			Help: "Total certificate requests by outcome",
		}, []string{"status"}),
		CertifiedHours: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vms_certificate_hours",
			Help:    "Hours covered by issued certificates",
			Buckets: []float64{100, 125, 150, 200, 300, 500, 1000},
		}),
	}
}

// IncrementOutcome records how a request ended.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// ObserveHours records the hours of an issued certificate.
func (m *Metrics) ObserveHours(hours int) {
	if m != nil {
		m.CertifiedHours.Observe(float64(hours))
	}
}
