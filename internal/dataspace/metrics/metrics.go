package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dataspace scenarios.
type Metrics struct {
	// Scenario outcomes: onboarding approved/rejected, publication shared/private, join, cancel
	ScenarioOutcome *prometheus.CounterVec

	// End-to-end scenario latency including store writes and log appends
	ScenarioLatency *prometheus.HistogramVec
}

// New creates a new Metrics instance with all dataspace metrics registered.
func New() *Metrics {
	return &Metrics{
		ScenarioOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vms_dataspace_scenarios_total",
			Help: "Total dataspace scenarios run by scenario and outcome",
		}, []string{"scenario", "outcome"}),

		ScenarioLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vms_dataspace_scenario_duration_seconds",
			Help:    "Duration of dataspace scenarios",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"scenario"}),
	}
}

// IncrementOutcome records how a scenario ended.
func (m *Metrics) IncrementOutcome(scenario, outcome string) {
	if m != nil {
		m.ScenarioOutcome.WithLabelValues(scenario, outcome).Inc()
	}
}

// ObserveLatency records a scenario duration.
func (m *Metrics) ObserveLatency(scenario string, d time.Duration) {
	if m != nil {
		m.ScenarioLatency.WithLabelValues(scenario).Observe(d.Seconds())
	}
}
