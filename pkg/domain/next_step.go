package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NextKind tags the shape of a step's successor.
type NextKind int

const (
	// NextTerminal means the step has no successor: the wizard offers Submit.
	NextTerminal NextKind = iota
	// NextDirect links to exactly one step.
	NextDirect
	// NextConditional selects the successor from the live value of one field.
	NextConditional
)

func (k NextKind) String() string {
	switch k {
	case NextDirect:
		return "direct"
	case NextConditional:
		return "conditional"
	default:
		return "terminal"
	}
}

// NextStep is the successor of a step, resolved once from either a plain key
// or a branch descriptor {when, stepMapper}.
type NextStep struct {
	Kind NextKind

	// Target is set for NextDirect.
	Target string

	// When is the field path whose value picks the branch (NextConditional).
	When string
	// StepMapper maps the string form of the field value to a step key (NextConditional).
	StepMapper map[string]string
}

// Direct returns a successor pointing at a fixed step.
func Direct(key string) NextStep {
	if key == "" {
		return NextStep{}
	}
	return NextStep{Kind: NextDirect, Target: key}
}

// Conditional returns a successor chosen by the value of the field at path when.
func Conditional(when string, stepMapper map[string]string) NextStep {
	mapper := make(map[string]string, len(stepMapper))
	for k, v := range stepMapper {
		mapper[k] = v
	}
	return NextStep{Kind: NextConditional, When: when, StepMapper: mapper}
}

// IsTerminal reports whether the step has no declared successor.
func (n NextStep) IsTerminal() bool { return n.Kind == NextTerminal }

// IsConditional reports whether the successor depends on a field value.
func (n NextStep) IsConditional() bool { return n.Kind == NextConditional }

// Targets lists every step key this successor may lead to.
func (n NextStep) Targets() []string {
	switch n.Kind {
	case NextDirect:
		return []string{n.Target}
	case NextConditional:
		out := make([]string, 0, len(n.StepMapper))
		for _, target := range n.StepMapper {
			out = append(out, target)
		}
		return out
	}
	return nil
}

// Resolve picks the concrete successor given a field lookup.
// A conditional whose field value has no entry in the mapper resolves to nothing,
// which callers treat the same as a terminal step.
func (n NextStep) Resolve(lookup func(path string) (any, bool)) (string, bool) {
	switch n.Kind {
	case NextDirect:
		return n.Target, true
	case NextConditional:
		if lookup == nil {
			return "", false
		}
		value, ok := lookup(n.When)
		if !ok || value == nil {
			return "", false
		}
		target, ok := n.StepMapper[NormalizeKey(value)]
		if !ok || target == "" {
			return "", false
		}
		return target, true
	}
	return "", false
}

// FromRaw builds a NextStep from a decoded scalar or branch object.
// Both "stepMapper" and "step_mapper" spellings are accepted.
func FromRaw(raw any) (NextStep, error) {
	switch v := raw.(type) {
	case nil:
		return NextStep{}, nil
	case NextStep:
		return v, nil
	case map[string]any:
		return conditionalFromMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for k, val := range v {
			converted[fmt.Sprint(k)] = val
		}
		return conditionalFromMap(converted)
	default:
		return Direct(NormalizeKey(v)), nil
	}
}

func conditionalFromMap(m map[string]any) (NextStep, error) {
	when, _ := m["when"].(string)
	if when == "" {
		return NextStep{}, fmt.Errorf("conditional next step requires a 'when' field path")
	}

	rawMapper, ok := m["stepMapper"]
	if !ok {
		rawMapper = m["step_mapper"]
	}

	mapper := make(map[string]string)
	switch mv := rawMapper.(type) {
	case map[string]any:
		for k, target := range mv {
			mapper[k] = NormalizeKey(target)
		}
	case map[any]any:
		for k, target := range mv {
			mapper[NormalizeKey(k)] = NormalizeKey(target)
		}
	case map[string]string:
		for k, target := range mv {
			mapper[k] = target
		}
	case nil:
		return NextStep{}, fmt.Errorf("conditional next step on %q requires a stepMapper", when)
	default:
		return NextStep{}, fmt.Errorf("conditional next step on %q: unsupported stepMapper type %T", when, rawMapper)
	}

	return NextStep{Kind: NextConditional, When: when, StepMapper: mapper}, nil
}

// MarshalJSON renders the successor the way authors write it: null, a key, or a branch object.
func (n NextStep) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case NextDirect:
		return json.Marshal(n.Target)
	case NextConditional:
		return json.Marshal(struct {
			When       string            `json:"when"`
			StepMapper map[string]string `json:"stepMapper"`
		}{n.When, n.StepMapper})
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, a string or number key, or a branch object.
func (n *NextStep) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
