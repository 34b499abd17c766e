package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the activity log.
type Metrics struct {
	EntriesAppended *prometheus.CounterVec
	PublishLatency  *prometheus.HistogramVec
}

// New creates a new Metrics instance with all activity log metrics registered.
func New() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vms_activity_log_entries_total",
			Help: "Total log entries appended by level and action",
		}, []string{"level", "action"}),

		PublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vms_activity_log_publish_duration_seconds",
			Help:    "Duration of mirroring a log entry to the event stream",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"result"}),
	}
}

// IncAppended records one appended entry.
func (m *Metrics) IncAppended(level, action string) {
	if m != nil {
		m.EntriesAppended.WithLabelValues(level, action).Inc()
	}
}

// ObservePublish records a mirror publish attempt.
func (m *Metrics) ObservePublish(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PublishLatency.WithLabelValues(result).Observe(d.Seconds())
}
