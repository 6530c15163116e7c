package formwizard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/formwizard/internal/dto"
	"github.com/aretw0/formwizard/internal/runtime"
	"github.com/aretw0/formwizard/pkg/adapters/file"
	loamAdapter "github.com/aretw0/formwizard/pkg/adapters/loam"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/ports"
	"github.com/aretw0/formwizard/pkg/registry"
	"github.com/aretw0/formwizard/pkg/schema"
	"github.com/aretw0/formwizard/pkg/values"
	"github.com/aretw0/loam"
)

// Engine is the high-level entry point of the library.
// It owns one wizard definition and is safe to share between sessions: every transition
// takes a state and returns a new one.
type Engine struct {
	runtime   *runtime.Engine
	loader    ports.DefinitionLoader
	def       *domain.Definition
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	dynamic   bool
	firstStep string
	labels    *domain.ButtonLabels
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom DefinitionLoader, bypassing the default file/Loam detection.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDynamic forces incremental navigation even if no step branches.
func WithDynamic(dynamic bool) Option {
	return func(e *Engine) {
		e.dynamic = dynamic
	}
}

// WithFirstStep changes the key of the step every session starts on (default: "1").
func WithFirstStep(key string) Option {
	return func(e *Engine) {
		e.firstStep = key
	}
}

// WithButtonLabels overrides the labels declared by the definition.
func WithButtonLabels(labels domain.ButtonLabels) Option {
	return func(e *Engine) {
		e.labels = &labels
	}
}

// New loads a wizard definition from path and builds an engine for it.
// A .yaml, .yml or .json path is read as a single file; anything else is opened
// as a Loam repository with one document per step.
// If WithLoader is given, path is only used as a name.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if path == "" {
			return nil, &ConfigError{Err: fmt.Errorf("a definition path is required when no custom loader is provided")}
		}
		loader, err := NewLoader(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}
	if path != "" {
		eng.Name = dto.TrimExtension(filepath.Base(path))
	}

	def, err := eng.loader.Load(context.Background())
	if err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	return eng.build(def)
}

// NewLoader picks the definition source for path: a single YAML or JSON file, or a
// read-only Loam repository holding one document per step.
func NewLoader(path string) (ports.DefinitionLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: fmt.Errorf("invalid path: %w", err)}
	}
	if file.IsDefinitionFile(absPath) {
		return file.NewLoader(absPath), nil
	}

	// Strict mode returns json.Number for every numeric field, so step keys
	// such as 1 and "1" decode the same way. The engine never writes.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to initialize loam: %w", err)}
	}
	return loamAdapter.New(loam.NewTypedRepository[dto.StepMetadata](repo)), nil
}

// NewFromDefinition builds an engine for an in-memory definition.
func NewFromDefinition(def *domain.Definition, opts ...Option) (*Engine, error) {
	if def == nil {
		return nil, &ConfigError{Err: fmt.Errorf("nil definition")}
	}
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	return eng.build(def)
}

func (e *Engine) build(def *domain.Definition) (*Engine, error) {
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.Name == "" {
		e.Name = def.Title
	}
	if e.Name != "" {
		e.logger = e.logger.With("wizard", e.Name)
	}
	if e.labels != nil {
		def.ButtonLabels = *e.labels
	}
	def.ButtonLabels = def.ButtonLabels.WithDefaults()
	e.def = def

	reg, err := registry.New(def.Steps, registry.WithFirstStep(e.firstStep))
	if err != nil {
		return nil, &ConfigError{Source: e.Name, Err: err}
	}

	rt, err := runtime.NewEngine(reg,
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithDynamic(def.Dynamic || e.dynamic),
		runtime.WithPresentation(def.Title, def.Description, def.ButtonLabels, def.Layout),
	)
	if err != nil {
		return nil, &ConfigError{Source: e.Name, Err: err}
	}
	e.runtime = rt
	return e, nil
}

// Start creates the initial state of a session and fires OnStepEnter for the first step.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Advance moves to target, recording registered as the fields of the step being left.
func (e *Engine) Advance(ctx context.Context, state *domain.State, target string, registered []string) (*domain.State, error) {
	return e.runtime.Advance(ctx, state, target, registered)
}

// Next advances to the successor resolved against store (state.Values when nil).
// It returns domain.ErrNoNextStep on a terminal step.
func (e *Engine) Next(ctx context.Context, state *domain.State, store map[string]any, registered []string) (*domain.State, error) {
	return e.runtime.Next(ctx, state, store, registered)
}

// JumpTo moves to an already visited index. Out-of-range indexes are ignored.
func (e *Engine) JumpTo(ctx context.Context, state *domain.State, index int, formValid bool) (*domain.State, error) {
	return e.runtime.JumpTo(ctx, state, index, formValid)
}

// Back moves to the previous index.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Back(ctx, state)
}

// Submit reduces store (state.Values when nil) to the fields of visited steps.
// The result is stored in the returned state's Result. Registered fields with no
// value in store do not appear in it.
func (e *Engine) Submit(ctx context.Context, state *domain.State, store map[string]any, registered []string) (*domain.State, error) {
	return e.runtime.Submit(ctx, state, store, registered)
}

// Cancel ends the session without a result.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Cancel(ctx, state)
}

// Render computes the view of the active step without transitioning.
func (e *Engine) Render(state *domain.State, formValid bool) (domain.View, error) {
	return e.runtime.Render(state, formValid)
}

// Reachable reports whether a navigation link to entry is enabled.
func (e *Engine) Reachable(state *domain.State, entry domain.NavEntry, formValid bool) bool {
	return runtime.Reachable(state, entry, formValid)
}

// IsCurrent reports whether entry is the highlighted navigation link.
func (e *Engine) IsCurrent(state *domain.State, entry domain.NavEntry) bool {
	return runtime.IsCurrent(state, entry)
}

// ApplyValues returns a copy of state with patch (flat path → value) merged into Values.
func (e *Engine) ApplyValues(state *domain.State, patch map[string]any) (*domain.State, error) {
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}
	next := state.Clone()
	if next.Values == nil {
		next.Values = make(map[string]any)
	}
	if err := values.Merge(next.Values, patch); err != nil {
		return nil, err
	}
	return next, nil
}

// RegisteredFields returns the field paths of the active step.
// Stateless hosts use them as the registered fields of every transition.
func (e *Engine) RegisteredFields(state *domain.State) []string {
	step, err := e.runtime.Step(state)
	if err != nil {
		return nil
	}
	return step.FieldNames()
}

// Validate checks state.Values against the fields of the active step.
func (e *Engine) Validate(state *domain.State) error {
	step, err := e.runtime.Step(state)
	if err != nil {
		return err
	}
	rules, err := schema.Compile(step.Fields)
	if err != nil {
		return err
	}
	return rules.Validate(state.Values)
}

// Definition returns the loaded definition.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

// Registry returns the step registry.
func (e *Engine) Registry() *registry.Registry {
	return e.runtime.Registry()
}

// IsDynamic reports whether the navigation schema grows with the traversal.
func (e *Engine) IsDynamic() bool {
	return e.runtime.IsDynamic()
}

// Loader returns the loader the definition came from (nil for NewFromDefinition).
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}
