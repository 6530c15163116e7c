package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Builder {
	return New("Sample").
		Step("1").Title("A").Choice("picks", "Pick", "B", "C").
		Branch("picks", map[string]string{"B": "2", "C": "3"}).
		Step("2").Title("B").Next("4").
		Step("3").Title("C").Next("4").
		Step("4").Title("D").
		Done()
}

func TestBuilder_Build(t *testing.T) {
	def, err := New("Signup").
		Labels(domain.ButtonLabels{Submit: "Finish"}).
		Step("1").Title("Account").Required("email", "E-mail").Next("2").
		Step("2").Title("Address").Substep("details").Text("address.city", "City").Next("3").
		Step("3").Title("Phone").Substep("details").
		Done().Build()
	require.NoError(t, err)

	assert.Equal(t, "Signup", def.Title)
	assert.Equal(t, "Finish", def.ButtonLabels.Submit)
	require.Len(t, def.Steps, 3)
	assert.Equal(t, "1", def.Steps[0].Key)
	assert.True(t, def.Steps[0].Fields[0].Required)
	assert.Equal(t, domain.Direct("2"), def.Steps[0].Next)
	assert.Equal(t, "details", def.Steps[2].SubstepOf)
	assert.True(t, def.Steps[2].Next.IsTerminal())
}

func TestBuilder_Errors(t *testing.T) {
	_, err := New("x").Step("2").Done().Build()
	assert.ErrorIs(t, err, domain.ErrFirstStepMissing)

	_, err = New("x").Step("1").Next("nope").Done().Build()
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	_, err = New("x").Step("1").Field(domain.Field{Label: "no name"}).Done().Build()
	assert.ErrorContains(t, err, "field without name")
}

func TestBuilder_StepIsReused(t *testing.T) {
	b := New("x")
	b.Step("1").Title("First")
	b.Step("1").Next("2")
	b.Step("2")

	def, err := b.Build()
	require.NoError(t, err)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, "First", def.Steps[0].Title)
	assert.Equal(t, "2", def.Steps[0].Next.Target)
}

func TestBuilder_Loader(t *testing.T) {
	loader, err := sample().Loader()
	require.NoError(t, err)
	tests.DefinitionLoaderContractTest(t, loader)

	def, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, def.Steps[0].Fields[0].Options)
}
