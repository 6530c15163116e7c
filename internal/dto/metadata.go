package dto

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// KindWizard marks the Loam document carrying wizard-level settings instead of a step.
const KindWizard = "wizard"

// FieldMetadata is the on-disk shape of a field.
type FieldMetadata struct {
	Name        string   `json:"name" mapstructure:"name"`
	Label       string   `json:"label" mapstructure:"label"`
	Type        string   `json:"type" mapstructure:"type"`
	Required    bool     `json:"required" mapstructure:"required"`
	Options     []string `json:"options" mapstructure:"options"`
	Default     any      `json:"default" mapstructure:"default"`
	Description string   `json:"description" mapstructure:"description"`
}

// StepMetadata is the header of one step, either a list item of a definition file
// or the frontmatter of a Loam document. step_key and next_step stay untyped because
// YAML hands them over as numbers, strings or maps.
type StepMetadata struct {
	Kind        string          `json:"kind" mapstructure:"kind"`
	StepKey     any             `json:"step_key" mapstructure:"step_key"`
	Title       string          `json:"title" mapstructure:"title"`
	Description string          `json:"description" mapstructure:"description"`
	Fields      []FieldMetadata `json:"fields" mapstructure:"fields"`
	NextStep    any             `json:"next_step" mapstructure:"next_step"`
	SubstepOf   string          `json:"substep_of" mapstructure:"substep_of"`

	// Wizard-level settings, read only when Kind is "wizard".
	Dynamic      bool                `json:"dynamic" mapstructure:"dynamic"`
	ButtonLabels domain.ButtonLabels `json:"button_labels" mapstructure:"button_labels"`
	Layout       domain.Layout       `json:"layout" mapstructure:"layout"`
}

// DefinitionMetadata is the on-disk shape of a single-file wizard definition.
type DefinitionMetadata struct {
	Title        string              `json:"title" mapstructure:"title"`
	Description  string              `json:"description" mapstructure:"description"`
	Dynamic      bool                `json:"dynamic" mapstructure:"dynamic"`
	ButtonLabels domain.ButtonLabels `json:"button_labels" mapstructure:"button_labels"`
	Layout       domain.Layout       `json:"layout" mapstructure:"layout"`
	Steps        []StepMetadata      `json:"steps" mapstructure:"steps"`
}

// aliases accepts the camelCase spelling used by form-schema authors.
var aliases = map[string]string{
	"stepKey":      "step_key",
	"nextStep":     "next_step",
	"substepOf":    "substep_of",
	"buttonLabels": "button_labels",
	"isDynamic":    "dynamic",
	"isCompactNav": "compact_nav",
	"compactNav":   "compact_nav",
	"fullWidth":    "full_width",
	"fullHeight":   "full_height",
	"inModal":      "in_modal",
}

func canonicalKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if alias, ok := aliases[k]; ok {
			k = alias
		}
		out[k] = v
	}
	return out
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeDefinition decodes a generic document (as produced by yaml.v3 or encoding/json)
// into a domain definition.
func DecodeDefinition(raw map[string]any) (*domain.Definition, error) {
	raw = canonicalKeys(raw)
	for _, nested := range []string{"layout", "button_labels"} {
		if m, ok := raw[nested].(map[string]any); ok {
			raw[nested] = canonicalKeys(m)
		}
	}

	rawSteps, _ := raw["steps"].([]any)
	steps := make([]any, 0, len(rawSteps))
	for i, s := range rawSteps {
		m, ok := asStringMap(s)
		if !ok {
			return nil, fmt.Errorf("steps[%d]: expected a mapping, got %T", i, s)
		}
		steps = append(steps, canonicalKeys(m))
	}
	raw["steps"] = steps

	var meta DefinitionMetadata
	if err := decode(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return meta.ToDomain()
}

// DecodeStep decodes one generic step mapping.
func DecodeStep(raw map[string]any) (StepMetadata, error) {
	var meta StepMetadata
	if err := decode(canonicalKeys(raw), &meta); err != nil {
		return meta, fmt.Errorf("failed to decode step: %w", err)
	}
	return meta, nil
}

// ToDomain converts the decoded file into a definition. Step order is preserved.
func (m DefinitionMetadata) ToDomain() (*domain.Definition, error) {
	def := &domain.Definition{
		Title:        m.Title,
		Description:  m.Description,
		Dynamic:      m.Dynamic,
		ButtonLabels: m.ButtonLabels,
		Layout:       m.Layout,
		Steps:        make([]domain.StepDefinition, 0, len(m.Steps)),
	}
	for i, s := range m.Steps {
		step, err := s.ToDomain("")
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		def.Steps = append(def.Steps, step)
	}
	return def, nil
}

// ToDomain converts the metadata into a step. fallbackKey is used when step_key is absent
// (a Loam document is keyed by its file name).
func (m StepMetadata) ToDomain(fallbackKey string) (domain.StepDefinition, error) {
	key := domain.NormalizeKey(m.StepKey)
	if key == "" {
		key = TrimExtension(fallbackKey)
	}
	if key == "" {
		return domain.StepDefinition{}, fmt.Errorf("step %q has no step_key", m.Title)
	}

	next, err := domain.FromRaw(m.NextStep)
	if err != nil {
		return domain.StepDefinition{}, fmt.Errorf("step %s: next_step: %w", key, err)
	}

	step := domain.StepDefinition{
		Key:         key,
		Title:       m.Title,
		Description: m.Description,
		Next:        next,
		SubstepOf:   m.SubstepOf,
		Fields:      make([]domain.Field, 0, len(m.Fields)),
	}
	for _, f := range m.Fields {
		if f.Name == "" {
			return domain.StepDefinition{}, fmt.Errorf("step %s: field without name", key)
		}
		step.Fields = append(step.Fields, domain.Field(f))
	}
	return step, nil
}

// TrimExtension turns a document ID such as "steps/2.md" into the key "steps/2".
func TrimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
