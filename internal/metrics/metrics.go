package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ReportsGenerated *prometheus.CounterVec
	CompositeScore   *prometheus.HistogramVec
	FetchDuration    *prometheus.HistogramVec
	ActiveSessions   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vicinity",
			Name:      "reports_generated_total",
			Help:      "Location reports attempted, by role and outcome.",
		}, []string{"role", "outcome"}),
		CompositeScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vicinity",
			Name:      "composite_score",
			Help:      "Composite scores of successful location reports.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"role"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vicinity",
			Name:      "amenity_fetch_duration_seconds",
			Help:      "Time spent fetching amenities from the provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vicinity",
			Name:      "active_sessions",
			Help:      "Sessions currently holding an orchestrator.",
		}),
	}
	reg.MustRegister(m.ReportsGenerated, m.CompositeScore, m.FetchDuration, m.ActiveSessions)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch implements amenity.FetchObserver.
func (m *Metrics) ObserveFetch(category amenity.Category, elapsed time.Duration, err error) {
	m.FetchDuration.WithLabelValues(string(category), outcome(err)).Observe(elapsed.Seconds())
}

// ObserveReport records one location report attempt.
func (m *Metrics) ObserveReport(role string, score int, err error) {
	m.ReportsGenerated.WithLabelValues(role, outcome(err)).Inc()
	if err == nil {
		m.CompositeScore.WithLabelValues(role).Observe(float64(score))
	}
}

// SetActiveSessions updates the session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}
