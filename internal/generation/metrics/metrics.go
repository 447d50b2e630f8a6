package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the generation engine.
type Metrics struct {
	JobsStarted        prometheus.Counter
	DomainsGenerated   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	QualityScore       prometheus.Histogram
}

// New creates and registers the generation metrics.
func New() *Metrics {
	return &Metrics{
		JobsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "replicator_generation_jobs_started_total",
			Help: "Total number of generation jobs started",
		}),
		DomainsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "replicator_domains_generated_total",
			Help: "Total number of domain generations by terminal status",
		}, []string{"status"}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "replicator_domain_generation_duration_seconds",
			Help:    "Wall-clock duration of a single domain generation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		QualityScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "replicator_domain_quality_score",
			Help:    "Quality score distribution of completed domains",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// ObserveDomain records one domain generation outcome.
func (m *Metrics) ObserveDomain(status string, duration time.Duration, qualityScore float64, completed bool) {
	if m == nil {
		return
	}
	m.DomainsGenerated.WithLabelValues(status).Inc()
	m.GenerationDuration.Observe(duration.Seconds())
	if completed {
		m.QualityScore.Observe(qualityScore)
	}
}

// IncJobsStarted counts a job entering execution.
func (m *Metrics) IncJobsStarted() {
	if m == nil {
		return
	}
	m.JobsStarted.Inc()
}
