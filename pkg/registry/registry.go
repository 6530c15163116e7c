package registry

import (
	"fmt"

	"github.com/aretw0/formwizard/pkg/domain"
)

// Registry holds the step definitions of one wizard, keyed by normalized step key.
// It is read-only after construction.
type Registry struct {
	steps     []domain.StepDefinition
	index     map[string]int
	firstStep string
}

// Option configures the Registry.
type Option func(*Registry)

// WithFirstStep overrides the canonical first-step key (default: "1").
func WithFirstStep(key string) Option {
	return func(r *Registry) {
		if key != "" {
			r.firstStep = domain.NormalizeKey(key)
		}
	}
}

// New builds a registry from an ordered set of step definitions.
// Keys are normalized so that numeric and string identifiers match.
// Empty and duplicate keys are rejected.
func New(steps []domain.StepDefinition, opts ...Option) (*Registry, error) {
	r := &Registry{
		steps:     make([]domain.StepDefinition, 0, len(steps)),
		index:     make(map[string]int, len(steps)),
		firstStep: domain.DefaultFirstStep,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, step := range steps {
		step.Key = domain.NormalizeKey(step.Key)
		if step.Key == "" {
			return nil, fmt.Errorf("step at position %d has no key", i)
		}
		if _, dup := r.index[step.Key]; dup {
			return nil, fmt.Errorf("duplicate step key %q", step.Key)
		}
		r.index[step.Key] = len(r.steps)
		r.steps = append(r.steps, step)
	}

	return r, nil
}

// FindByKey returns the step with the given key.
func (r *Registry) FindByKey(key string) (domain.StepDefinition, bool) {
	i, ok := r.index[domain.NormalizeKey(key)]
	if !ok {
		return domain.StepDefinition{}, false
	}
	return r.steps[i], true
}

// Find returns the first step, in definition order, that satisfies pred.
func (r *Registry) Find(pred func(domain.StepDefinition) bool) (domain.StepDefinition, bool) {
	for _, s := range r.steps {
		if pred(s) {
			return s, true
		}
	}
	return domain.StepDefinition{}, false
}

// FindFirst returns the step carrying the canonical first key.
func (r *Registry) FindFirst() (domain.StepDefinition, error) {
	step, ok := r.FindByKey(r.firstStep)
	if !ok {
		return domain.StepDefinition{}, fmt.Errorf("%w: no step with key %q", domain.ErrFirstStepMissing, r.firstStep)
	}
	return step, nil
}

// FirstKey returns the canonical first-step key.
func (r *Registry) FirstKey() string {
	return r.firstStep
}

// Steps returns the definitions in their original order.
func (r *Registry) Steps() []domain.StepDefinition {
	return append([]domain.StepDefinition{}, r.steps...)
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// IsDynamic reports whether navigation must be built incrementally:
// either the author asked for it or some step branches on a field value.
func (r *Registry) IsDynamic(explicit bool) bool {
	if explicit {
		return true
	}
	_, found := r.Find(func(s domain.StepDefinition) bool {
		return s.Next.IsConditional()
	})
	return found
}
