package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/formwizard/internal/dto"
	"github.com/aretw0/formwizard/pkg/domain"
)

// Loader implements ports.DefinitionLoader over a definition held in memory.
type Loader struct {
	def *domain.Definition
	raw map[string]any
}

// NewLoader serves an already built definition.
func NewLoader(def *domain.Definition) *Loader {
	return &Loader{def: def}
}

// NewFromMap serves a generic document (e.g. decoded JSON) through the same decoding
// rules as the file loaders.
func NewFromMap(raw map[string]any) *Loader {
	return &Loader{raw: raw}
}

// Load returns a copy of the definition so callers cannot mutate the loader's steps.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	if l.raw != nil {
		return dto.DecodeDefinition(l.raw)
	}
	if l.def == nil {
		return nil, fmt.Errorf("memory loader has no definition")
	}
	def := *l.def
	def.Steps = append([]domain.StepDefinition{}, l.def.Steps...)
	return &def, nil
}

// ListSteps returns the step keys in definition order.
func (l *Loader) ListSteps(ctx context.Context) ([]string, error) {
	def, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(def.Steps))
	for i, s := range def.Steps {
		keys[i] = s.Key
	}
	return keys, nil
}
