// Package form is the built-in value store a wizard session reads at every transition.
//
// It keeps the values entered so far, knows which fields the active step registered,
// and validates them with the schema package.
package form

import (
	"fmt"
	"sync"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/schema"
	"github.com/aretw0/formwizard/pkg/values"
)

// Form is safe for concurrent use.
type Form struct {
	mu         sync.RWMutex
	values     map[string]any
	registered []string
	rules      schema.Schema
}

// New creates a form seeded with a deep copy of initial.
func New(initial map[string]any) *Form {
	f := &Form{values: domain.CopyValues(initial)}
	if f.values == nil {
		f.values = make(map[string]any)
	}
	return f
}

// Register replaces the live fields with those of the newly active step.
// Declared defaults are applied to fields that have no value yet.
func (f *Form) Register(fields []domain.Field) error {
	rules, err := schema.Compile(fields)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = rules
	f.registered = rules.Fields()
	for _, field := range fields {
		if field.Default == nil {
			continue
		}
		if _, ok := values.Get(f.values, field.Name); ok {
			continue
		}
		if err := values.Set(f.values, field.Name, field.Default); err != nil {
			return fmt.Errorf("default for %s: %w", field.Name, err)
		}
	}
	return nil
}

// Set stores a single value at path.
func (f *Form) Set(path string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return values.Set(f.values, path, v)
}

// Merge applies a flat path → value patch.
func (f *Form) Merge(patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return values.Merge(f.values, patch)
}

// Get returns the value at path.
func (f *Form) Get(path string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return values.Get(f.values, path)
}

// Values returns a deep copy of the store.
func (f *Form) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return domain.CopyValues(f.values)
}

// RegisteredFields returns the field paths of the active step.
func (f *Form) RegisteredFields() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string{}, f.registered...)
}

// Errors validates the live fields and returns every failure.
func (f *Form) Errors() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rules.Validate(f.values)
}

// Valid reports whether the live fields pass validation.
func (f *Form) Valid() bool {
	return f.Errors() == nil
}
