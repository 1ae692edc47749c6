// Package jobmetrics instruments background jobs.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors shared by every job handler.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewMetrics registers job collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procman_jobs_total",
			Help: "Job executions by task type and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procman_job_duration_seconds",
			Help:    "Wall time of job executions.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procman_job_rows_total",
			Help: "Rows refreshed or deleted by jobs.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.duration, m.rows)
	return m
}

// Run measures a single execution. The zero value and runs of a nil
// Metrics record nothing.
type Run struct {
	metrics *Metrics
	job     string
	began   time.Time
	rows    int64
}

// Start begins measuring job.
func (m *Metrics) Start(job string) *Run {
	return &Run{metrics: m, job: job, began: time.Now()}
}

// Rows adds n to the rows touched by this run.
func (r *Run) Rows(n int64) {
	r.rows += n
}

// Finish records the outcome of the run and returns err unchanged so it can
// be used in a deferred assignment.
func (r *Run) Finish(err error) error {
	if r == nil || r.metrics == nil {
		return err
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.metrics.runs.WithLabelValues(r.job, outcome).Inc()
	r.metrics.duration.WithLabelValues(r.job).Observe(time.Since(r.began).Seconds())
	if err == nil && r.rows > 0 {
		r.metrics.rows.WithLabelValues(r.job).Add(float64(r.rows))
	}
	return err
}
