package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for a form session engine.
type Metrics struct {
	StepTransitions    *prometheus.CounterVec
	FieldEdits         prometheus.Counter
	SnapshotSaves      prometheus.Counter
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_step_transitions_total",
				Help: "Total number of step transitions",
			},
			[]string{"step_type"},
		),
		FieldEdits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "intake_field_edits_total",
				Help: "Total number of field edits",
			},
		),
		SnapshotSaves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "intake_snapshot_saves_total",
				Help: "Total number of snapshot flushes",
			},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Total number of submission attempts by outcome",
			},
			[]string{"outcome"},
		),
		SubmissionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "intake_submission_duration_seconds",
				Help: "Duration of submission calls",
			},
		),
	}
	reg.MustRegister(
		m.StepTransitions,
		m.FieldEdits,
		m.SnapshotSaves,
		m.Submissions,
		m.SubmissionDuration,
	)
	return m
}

// Hooks adapts the collectors into LifecycleHooks for the engine.
func (m *Metrics) Hooks() LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *StepEvent) {
			m.StepTransitions.WithLabelValues(e.StepType).Inc()
		},
		OnFieldEdit: func(ctx context.Context, e *FieldEvent) {
			m.FieldEdits.Inc()
		},
		OnSnapshotSave: func(ctx context.Context) {
			m.SnapshotSaves.Inc()
		},
		OnSubmitResult: func(ctx context.Context, e *SubmitEvent) {
			m.Submissions.WithLabelValues(e.Outcome).Inc()
			m.SubmissionDuration.Observe(e.Duration.Seconds())
		},
	}
}
