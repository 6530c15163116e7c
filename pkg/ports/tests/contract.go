package tests

import (
	"context"
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/ports"
)

// DefinitionLoaderContractTest verifies that a loader decodes the canonical sample wizard:
// step "1" branches on "picks" to "2" or "3", both of which lead to the terminal step "4".
func DefinitionLoaderContractTest(t *testing.T, loader ports.DefinitionLoader) {
	t.Helper()
	ctx := context.Background()

	def, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t.Run("Steps", func(t *testing.T) {
		if len(def.Steps) != 4 {
			t.Fatalf("got %d steps, want 4", len(def.Steps))
		}
		keys := map[string]domain.StepDefinition{}
		for _, s := range def.Steps {
			keys[s.Key] = s
		}
		for _, k := range []string{"1", "2", "3", "4"} {
			if _, ok := keys[k]; !ok {
				t.Errorf("step %q missing", k)
			}
		}
	})

	t.Run("Branch", func(t *testing.T) {
		var first domain.StepDefinition
		for _, s := range def.Steps {
			if s.Key == "1" {
				first = s
			}
		}
		if !first.Next.IsConditional() {
			t.Fatalf("step 1 next = %v, want conditional", first.Next.Kind)
		}
		if first.Next.When != "picks" {
			t.Errorf("when = %q, want picks", first.Next.When)
		}
		if first.Next.StepMapper["B"] != "2" || first.Next.StepMapper["C"] != "3" {
			t.Errorf("stepMapper = %v", first.Next.StepMapper)
		}
		if len(first.Fields) == 0 || first.Fields[0].Name == "" {
			t.Errorf("step 1 fields = %v", first.Fields)
		}
	})

	t.Run("Direct and Terminal", func(t *testing.T) {
		for _, s := range def.Steps {
			switch s.Key {
			case "2", "3":
				if s.Next.Kind != domain.NextDirect || s.Next.Target != "4" {
					t.Errorf("step %s next = %+v, want direct 4", s.Key, s.Next)
				}
			case "4":
				if !s.Next.IsTerminal() {
					t.Errorf("step 4 next = %+v, want terminal", s.Next)
				}
			}
		}
	})

	if lister, ok := loader.(ports.StepLister); ok {
		t.Run("ListSteps", func(t *testing.T) {
			keys, err := lister.ListSteps(ctx)
			if err != nil {
				t.Fatalf("ListSteps() error = %v", err)
			}
			if len(keys) != 4 {
				t.Errorf("ListSteps() = %v, want 4 keys", keys)
			}
		})
	}
}
