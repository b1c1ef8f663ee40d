// Package telemetry exports role job submission metrics to Prometheus.
package telemetry

import (
	"time"

	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics implements types.SubmissionMetrics using Prometheus.
type JobMetrics struct {
	jobsInserted       *prometheus.CounterVec
	targetsSkipped     *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
}

var _ types.SubmissionMetrics = (*JobMetrics)(nil)

// NewJobMetrics registers the collectors on reg. A nil registerer leaves the
// collectors unregistered.
func NewJobMetrics(reg prometheus.Registerer, namespace string) *JobMetrics {
	if namespace == "" {
		namespace = "svaroles"
	}
	factory := promauto.With(reg)

	return &JobMetrics{
		jobsInserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "inserted_total",
				Help:      "Total number of user role jobs inserted by action",
			},
			[]string{"action"},
		),

		targetsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "targets_skipped_total",
				Help:      "Total number of submission targets skipped by reason",
			},
			[]string{"reason"},
		),

		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "submissions_total",
				Help:      "Total number of role job submissions by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		submissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "submission_duration_seconds",
				Help:      "Duration of role job submissions in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"action"},
		),
	}
}

// JobInserted records one inserted job row.
func (m *JobMetrics) JobInserted(action types.RoleAction) {
	m.jobsInserted.WithLabelValues(string(action)).Inc()
}

// TargetSkipped records one skipped target token.
func (m *JobMetrics) TargetSkipped(reason string) {
	m.targetsSkipped.WithLabelValues(reason).Inc()
}

// SubmissionFinished records the outcome and duration of a submission.
func (m *JobMetrics) SubmissionFinished(action types.RoleAction, outcome string, elapsed time.Duration) {
	m.submissions.WithLabelValues(string(action), outcome).Inc()
	m.submissionDuration.WithLabelValues(string(action)).Observe(elapsed.Seconds())
}
