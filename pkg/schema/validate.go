package schema

import (
	"fmt"
	"slices"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/values"
)

// Rule is the compiled check of one field.
type Rule struct {
	Field    string
	Type     Type // nil accepts any value
	Required bool
	Options  []string
}

// Schema is an ordered list of rules, usually the fields of one step.
type Schema []Rule

// Compile turns field declarations into rules. Unknown type names are an error.
func Compile(fields []domain.Field) (Schema, error) {
	s := make(Schema, 0, len(fields))
	for _, f := range fields {
		t, err := ParseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		s = append(s, Rule{
			Field:    f.Name,
			Type:     t,
			Required: f.Required,
			Options:  f.Options,
		})
	}
	return s, nil
}

// Fields returns the field paths covered by the schema.
func (s Schema) Fields() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.Field
	}
	return out
}

// Validate checks every rule against store and reports all failures at once.
// Missing optional fields are fine; an empty string counts as missing for required fields.
func (s Schema) Validate(store map[string]any) error {
	var errs []error
	for _, r := range s {
		if err := r.check(store); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields checks only the named fields. Names without a rule are reported.
func (s Schema) ValidateFields(store map[string]any, fields ...string) error {
	var errs []error
	for _, name := range fields {
		i := slices.IndexFunc(s, func(r Rule) bool { return r.Field == name })
		if i < 0 {
			errs = append(errs, &ValidationError{Field: name, Reason: "not declared"})
			continue
		}
		if err := s[i].check(store); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func (r Rule) check(store map[string]any) error {
	value, ok := values.Get(store, r.Field)
	if !ok || value == nil || value == "" {
		if r.Required {
			return &ValidationError{Field: r.Field, Reason: "required"}
		}
		return nil
	}

	if r.Type != nil {
		if err := r.Type.Validate(value); err != nil {
			return &ValidationError{Field: r.Field, Reason: err.Error(), Value: value}
		}
	}

	if len(r.Options) > 0 && !slices.Contains(r.Options, fmt.Sprint(value)) {
		return &ValidationError{Field: r.Field, Reason: fmt.Sprintf("must be one of %v", r.Options), Value: value}
	}
	return nil
}
