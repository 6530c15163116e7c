package memory

import (
	"context"
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/ports"
	"github.com/aretw0/formwizard/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewStore())
}

func TestStore_SaveCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	state := domain.NewState("s1", "1")
	state.PrevSteps = append(state.PrevSteps, "1")
	require.NoError(t, store.Save(ctx, "s1", state))

	state.PrevSteps[0] = "mutated"
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, loaded.PrevSteps)
}

func TestLoader_FromMap_Contract(t *testing.T) {
	loader := NewFromMap(map[string]any{
		"title": "Sample",
		"steps": []any{
			map[string]any{
				"stepKey": 1,
				"title":   "A",
				"fields":  []any{map[string]any{"name": "picks"}},
				"nextStep": map[string]any{
					"when":       "picks",
					"stepMapper": map[string]any{"B": 2, "C": 3},
				},
			},
			map[string]any{"stepKey": 2, "title": "B", "nextStep": 4},
			map[string]any{"stepKey": 3, "title": "C", "nextStep": "4"},
			map[string]any{"stepKey": 4, "title": "D"},
		},
	})
	tests.DefinitionLoaderContractTest(t, loader)
}

func TestLoader_CopiesDefinition(t *testing.T) {
	def := &domain.Definition{Steps: []domain.StepDefinition{{Key: "1", Title: "One"}}}
	loader := NewLoader(def)

	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	loaded.Steps[0].Title = "changed"
	assert.Equal(t, "One", def.Steps[0].Title)

	_, err = NewLoader(nil).Load(context.Background())
	assert.Error(t, err)
}
