package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JanitorMetrics records housekeeping job runs.
type JanitorMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	removed  *prometheus.CounterVec
}

func NewJanitorMetrics(reg prometheus.Registerer) *JanitorMetrics {
	if reg == nil {
		return &JanitorMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "janitor_job_duration_seconds",
		Help:    "Duration of janitor jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "janitor_job_runs_total",
		Help: "Janitor job executions by outcome.",
	}, []string{"job", "outcome"})
	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "janitor_rows_removed_total",
		Help: "Rows removed by janitor jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, removed)
	return &JanitorMetrics{duration: duration, runs: runs, removed: removed}
}

// ObserveRun records one job execution.
func (j *JanitorMetrics) ObserveRun(job string, duration time.Duration, err error) {
	if j == nil || j.runs == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	j.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
	j.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
}

func (j *JanitorMetrics) AddRemoved(job string, n int64) {
	if j == nil || j.removed == nil || n <= 0 {
		return
	}
	j.removed.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}
