package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by the wizard lifecycle.
type Metrics struct {
	StepVisits  *prometheus.CounterVec
	Jumps       *prometheus.CounterVec
	Submissions prometheus.Counter
	Cancels     *prometheus.CounterVec
	PathLength  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg registers nothing, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer, wizard string) (*Metrics, error) {
	constLabels := prometheus.Labels{}
	if wizard != "" {
		constLabels["wizard"] = wizard
	}

	m := &Metrics{
		StepVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "formwizard_step_visits_total",
			Help:        "Number of times each step became active.",
			ConstLabels: constLabels,
		}, []string{"step"}),
		Jumps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "formwizard_jumps_total",
			Help:        "Navigation jumps, by whether the form was valid.",
			ConstLabels: constLabels,
		}, []string{"valid"}),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "formwizard_submissions_total",
			Help:        "Number of submitted wizards.",
			ConstLabels: constLabels,
		}),
		Cancels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "formwizard_cancellations_total",
			Help:        "Number of cancelled wizards, by the step they were cancelled on.",
			ConstLabels: constLabels,
		}, []string{"step"}),
		PathLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "formwizard_submitted_path_length",
			Help:        "Number of visited steps in submitted wizards.",
			ConstLabels: constLabels,
			Buckets:     prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.StepVisits, m.Jumps, m.Submissions, m.Cancels, m.PathLength} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.StepKey).Inc()
		},
		OnJump: func(_ context.Context, e *domain.JumpEvent) {
			valid := "false"
			if e.FormValid {
				valid = "true"
			}
			m.Jumps.WithLabelValues(valid).Inc()
		},
		OnSubmit: func(_ context.Context, e *domain.SubmitEvent) {
			m.Submissions.Inc()
			m.PathLength.Observe(float64(len(e.Visited)))
		},
		OnCancel: func(_ context.Context, e *domain.StepEvent) {
			m.Cancels.WithLabelValues(e.StepKey).Inc()
		},
	}
}

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter", "session_id", e.SessionID, "step", e.StepKey, "index", e.Index)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_leave", "session_id", e.SessionID, "step", e.StepKey)
		},
		OnJump: func(ctx context.Context, e *domain.JumpEvent) {
			logger.InfoContext(ctx, "jump", "session_id", e.SessionID, "from", e.From, "to", e.To, "valid", e.FormValid)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submit", "session_id", e.SessionID, "visited", e.Visited)
		},
		OnCancel: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "cancel", "session_id", e.SessionID, "step", e.StepKey)
		},
	}
}
