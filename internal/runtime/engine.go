package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/registry"
)

// Engine is the navigation state machine of one wizard definition.
// It is stateless: every transition takes a *domain.State, clones it, and returns the new state.
type Engine struct {
	registry  *registry.Registry
	dynamic   bool
	static    []domain.NavEntry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	labels    domain.ButtonLabels
	title     string
	desc      string
	layout    domain.Layout
	firstStep domain.StepDefinition
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDynamic forces incremental navigation even when no step branches.
func WithDynamic(dynamic bool) EngineOption {
	return func(e *Engine) {
		e.dynamic = e.dynamic || dynamic
	}
}

// WithPresentation carries the host-facing parts of the definition into rendered views.
func WithPresentation(title, description string, labels domain.ButtonLabels, layout domain.Layout) EngineOption {
	return func(e *Engine) {
		e.title = title
		e.desc = description
		e.labels = labels
		e.layout = layout
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over the given registry.
// It fails when the registry has no first step, or when a static chain is malformed.
func NewEngine(reg *registry.Registry, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		labels:   domain.DefaultButtonLabels,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.labels = e.labels.WithDefaults()

	first, err := reg.FindFirst()
	if err != nil {
		return nil, err
	}
	e.firstStep = first

	e.dynamic = reg.IsDynamic(e.dynamic)
	if !e.dynamic {
		schema, err := BuildStatic(reg)
		if err != nil {
			return nil, err
		}
		e.static = schema
	}

	e.logger.Debug("engine ready", "steps", reg.Len(), "dynamic", e.dynamic, "first_step", first.Key)
	return e, nil
}

// Registry exposes the step registry the engine navigates.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// IsDynamic reports whether the navigation schema is built incrementally.
func (e *Engine) IsDynamic() bool {
	return e.dynamic
}

// Start creates the initial state of a session positioned on the first step.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := domain.NewState(sessionID, e.firstStep.Key)
	state.Dynamic = e.dynamic
	if e.dynamic {
		state.NavSchema = BuildDynamicSeed(e.firstStep)
	} else {
		state.NavSchema = append([]domain.NavEntry{}, e.static...)
	}

	for _, f := range e.firstStep.Fields {
		if f.Default != nil {
			if err := setDefault(state.Values, f); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Debug("session started", "session_id", sessionID, "step", state.ActiveStep)
	e.emitStepEnter(ctx, state)
	return state, nil
}

// Step returns the definition of the active step.
func (e *Engine) Step(state *domain.State) (domain.StepDefinition, error) {
	step, ok := e.registry.FindByKey(state.ActiveStep)
	if !ok {
		return domain.StepDefinition{}, &StepNotFoundError{Key: state.ActiveStep}
	}
	return step, nil
}

// StepNotFoundError reports a transition towards a key absent from the registry.
// It signals an authoring bug in the step graph.
type StepNotFoundError struct {
	Key  string
	From string
}

func (e *StepNotFoundError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("step %q (next of %q) is not defined", e.Key, e.From)
	}
	return fmt.Sprintf("step %q is not defined", e.Key)
}

func (e *StepNotFoundError) Unwrap() error {
	return domain.ErrStepNotFound
}
