package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/formwizard/pkg/adapters/memory"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/registry"
)

// Builder assembles a wizard definition. Steps keep the order in which they were added.
type Builder struct {
	def   domain.Definition
	order []string
	steps map[string]*StepBuilder
}

// New creates a builder for a wizard with the given title.
func New(title string) *Builder {
	return &Builder{
		def:   domain.Definition{Title: title},
		steps: make(map[string]*StepBuilder),
	}
}

// Description sets the wizard description.
func (b *Builder) Description(text string) *Builder {
	b.def.Description = text
	return b
}

// Dynamic forces incremental navigation.
func (b *Builder) Dynamic() *Builder {
	b.def.Dynamic = true
	return b
}

// Labels overrides button captions; empty labels keep their defaults.
func (b *Builder) Labels(labels domain.ButtonLabels) *Builder {
	b.def.ButtonLabels = labels
	return b
}

// Layout sets the cosmetic layout flags.
func (b *Builder) Layout(layout domain.Layout) *Builder {
	b.def.Layout = layout
	return b
}

// Step adds a step, or returns the existing builder for key.
func (b *Builder) Step(key string) *StepBuilder {
	key = domain.NormalizeKey(key)
	if sb, ok := b.steps[key]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    domain.StepDefinition{Key: key, Title: key},
		builder: b,
	}
	b.steps[key] = sb
	b.order = append(b.order, key)
	return sb
}

// Build returns the definition after checking that every step key is unique and non-empty,
// that the first step exists and that no successor points at an unknown step.
func (b *Builder) Build() (*domain.Definition, error) {
	def := b.def
	def.Steps = make([]domain.StepDefinition, 0, len(b.order))
	var errs []error
	for _, key := range b.order {
		sb := b.steps[key]
		if sb.err != nil {
			errs = append(errs, sb.err)
		}
		def.Steps = append(def.Steps, sb.step)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	reg, err := registry.New(def.Steps)
	if err != nil {
		return nil, err
	}
	if _, err := reg.FindFirst(); err != nil {
		return nil, err
	}
	for _, s := range def.Steps {
		for _, target := range s.Next.Targets() {
			if _, ok := reg.FindByKey(target); !ok {
				return nil, fmt.Errorf("step %s: %w: %q", s.Key, domain.ErrStepNotFound, target)
			}
		}
	}
	return &def, nil
}

// Loader builds the definition and wraps it in a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build definition: %w", err)
	}
	return memory.NewLoader(def), nil
}

// StepBuilder configures one step.
type StepBuilder struct {
	step    domain.StepDefinition
	builder *Builder
	err     error
}

// Title sets the navigation title of the step.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.step.Title = title
	return s
}

// Description sets the text shown above the fields.
func (s *StepBuilder) Description(text string) *StepBuilder {
	s.step.Description = text
	return s
}

// Field adds a field to the step.
func (s *StepBuilder) Field(f domain.Field) *StepBuilder {
	if f.Name == "" {
		s.err = errors.Join(s.err, fmt.Errorf("step %s: field without name", s.step.Key))
		return s
	}
	s.step.Fields = append(s.step.Fields, f)
	return s
}

// Text adds an optional string field.
func (s *StepBuilder) Text(name, label string) *StepBuilder {
	return s.Field(domain.Field{Name: name, Label: label, Type: "string"})
}

// Required adds a required string field.
func (s *StepBuilder) Required(name, label string) *StepBuilder {
	return s.Field(domain.Field{Name: name, Label: label, Type: "string", Required: true})
}

// Choice adds a required field restricted to options.
func (s *StepBuilder) Choice(name, label string, options ...string) *StepBuilder {
	return s.Field(domain.Field{Name: name, Label: label, Type: "string", Required: true, Options: options})
}

// Next points the step at a fixed successor.
func (s *StepBuilder) Next(key string) *StepBuilder {
	s.step.Next = domain.Direct(domain.NormalizeKey(key))
	return s
}

// Branch picks the successor from the value of the field at when.
func (s *StepBuilder) Branch(when string, stepMapper map[string]string) *StepBuilder {
	s.step.Next = domain.Conditional(when, stepMapper)
	return s
}

// Substep folds the step under the navigation group.
func (s *StepBuilder) Substep(group string) *StepBuilder {
	s.step.SubstepOf = group
	return s
}

// Terminal removes any successor, making the step offer Submit.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.Next = domain.NextStep{}
	return s
}

// Step continues with another step of the same wizard.
func (s *StepBuilder) Step(key string) *StepBuilder {
	return s.builder.Step(key)
}

// Done returns to the wizard builder.
func (s *StepBuilder) Done() *Builder {
	return s.builder
}

// Definition returns the step as configured so far.
func (s *StepBuilder) Definition() domain.StepDefinition {
	return s.step
}
