package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultFirstStep is the key of the step every wizard starts from.
const DefaultFirstStep = "1"

// Field is one form input owned by a step.
// Only Name (a dotted path into the value store) is read by the navigation core.
// The remaining attributes feed the built-in form layer.
type Field struct {
	Name        string   `json:"name" mapstructure:"name"`
	Label       string   `json:"label,omitempty" mapstructure:"label"`
	Type        string   `json:"type,omitempty" mapstructure:"type"` // "string", "int", "float", "bool", "[string]"...
	Required    bool     `json:"required,omitempty" mapstructure:"required"`
	Options     []string `json:"options,omitempty" mapstructure:"options"`
	Default     any      `json:"default,omitempty" mapstructure:"default"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
}

// StepDefinition is one page of the wizard.
// It is owned by the caller and read-only for the lifetime of a session.
type StepDefinition struct {
	Key         string   `json:"step_key"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Next        NextStep `json:"next_step"`
	SubstepOf   string   `json:"substep_of,omitempty"`
}

// FieldNames returns the field paths declared by the step, in order.
func (s StepDefinition) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// NormalizeKey converts a step identifier of any scalar kind into its canonical string form,
// so that 1, 1.0, json.Number("1") and "1" all address the same step.
func NormalizeKey(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return k
	case json.Number:
		return NormalizeKey(k.String())
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	case float64:
		if k == float64(int64(k)) {
			return strconv.FormatInt(int64(k), 10)
		}
		return strconv.FormatFloat(k, 'f', -1, 64)
	default:
		return fmt.Sprint(k)
	}
}
