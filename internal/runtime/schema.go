package runtime

import (
	"fmt"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/registry"
)

// BuildStatic walks the fixed chain from the first step and produces the whole navigation schema.
// The first member of a group is primary; following members sharing its SubstepOf are folded.
func BuildStatic(reg *registry.Registry) ([]domain.NavEntry, error) {
	step, err := reg.FindFirst()
	if err != nil {
		return nil, err
	}

	var schema []domain.NavEntry
	seen := make(map[string]bool)

	for {
		if seen[step.Key] {
			return nil, fmt.Errorf("step chain loops back to %q", step.Key)
		}
		seen[step.Key] = true

		if step.Next.IsConditional() {
			return nil, fmt.Errorf("step %q branches on %q; static navigation needs plain next steps", step.Key, step.Next.When)
		}

		primary := len(schema) == 0 || step.SubstepOf == "" || step.SubstepOf != schema[len(schema)-1].SubstepOf
		schema = append(schema, domain.NavEntry{
			Title:     step.Title,
			Key:       step.Key,
			Index:     len(schema),
			Primary:   primary,
			SubstepOf: step.SubstepOf,
		})

		if step.Next.IsTerminal() {
			break
		}
		next, ok := reg.FindByKey(step.Next.Target)
		if !ok {
			break
		}
		step = next
	}

	return schema, nil
}

// BuildDynamicSeed returns the single entry a dynamic wizard starts with.
func BuildDynamicSeed(first domain.StepDefinition) []domain.NavEntry {
	return []domain.NavEntry{{
		Title:     first.Title,
		Key:       first.Key,
		Index:     0,
		Primary:   true,
		SubstepOf: first.SubstepOf,
	}}
}

// Extend appends the entry for next to a dynamic schema. The input slice is not modified.
func Extend(schema []domain.NavEntry, next domain.StepDefinition) []domain.NavEntry {
	out := make([]domain.NavEntry, len(schema), len(schema)+1)
	copy(out, schema)

	entry := domain.NavEntry{
		Title:     next.Title,
		Key:       next.Key,
		Primary:   true,
		SubstepOf: next.SubstepOf,
	}
	if len(schema) > 0 {
		last := schema[len(schema)-1]
		entry.Index = last.Index + 1
		entry.Primary = next.SubstepOf == "" || next.SubstepOf != last.SubstepOf
	}

	return append(out, entry)
}
