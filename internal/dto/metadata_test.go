package dto

import (
	"testing"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `
title: Signup
buttonLabels:
  submit: Finish
layout:
  compactNav: true
steps:
  - stepKey: 1
    title: Account
    fields:
      - name: email
        type: string
        required: true
      - name: plan
        options: [basic, pro]
        default: basic
    nextStep:
      when: plan
      stepMapper:
        basic: 2
        pro: "3"
  - step_key: "2"
    title: Basic
    substep_of: billing
    next_step: 4
  - step_key: 3
    title: Pro
    substep_of: billing
    next_step: "4"
  - step_key: 4
    title: Review
`

func TestDecodeDefinition_YAML(t *testing.T) {
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(sample), &raw))

	def, err := DecodeDefinition(raw)
	require.NoError(t, err)

	assert.Equal(t, "Signup", def.Title)
	assert.Equal(t, "Finish", def.ButtonLabels.Submit)
	assert.Equal(t, "Back", def.ButtonLabels.WithDefaults().Back)
	assert.True(t, def.Layout.CompactNav)

	require.Len(t, def.Steps, 4)
	first := def.Steps[0]
	assert.Equal(t, "1", first.Key)
	assert.Equal(t, domain.NextConditional, first.Next.Kind)
	assert.Equal(t, "plan", first.Next.When)
	assert.Equal(t, map[string]string{"basic": "2", "pro": "3"}, first.Next.StepMapper)
	require.Len(t, first.Fields, 2)
	assert.True(t, first.Fields[0].Required)
	assert.Equal(t, []string{"basic", "pro"}, first.Fields[1].Options)
	assert.Equal(t, "basic", first.Fields[1].Default)

	assert.Equal(t, domain.Direct("4"), def.Steps[1].Next)
	assert.Equal(t, domain.Direct("4"), def.Steps[2].Next)
	assert.Equal(t, "billing", def.Steps[2].SubstepOf)
	assert.True(t, def.Steps[3].Next.IsTerminal())
}

func TestDecodeDefinition_Errors(t *testing.T) {
	_, err := DecodeDefinition(map[string]any{"steps": []any{"oops"}})
	assert.ErrorContains(t, err, "steps[0]")

	_, err = DecodeDefinition(map[string]any{"steps": []any{
		map[string]any{"title": "no key"},
	}})
	assert.ErrorContains(t, err, "no step_key")

	_, err = DecodeDefinition(map[string]any{"steps": []any{
		map[string]any{"step_key": "1", "next_step": map[string]any{"stepMapper": map[string]any{"a": "2"}}},
	}})
	assert.ErrorContains(t, err, "next_step")

	_, err = DecodeDefinition(map[string]any{"steps": []any{
		map[string]any{"step_key": "1", "fields": []any{map[string]any{"label": "x"}}},
	}})
	assert.ErrorContains(t, err, "field without name")
}

func TestStepMetadata_FallbackKey(t *testing.T) {
	meta, err := DecodeStep(map[string]any{"title": "Two", "nextStep": 3})
	require.NoError(t, err)

	step, err := meta.ToDomain("steps/2.md")
	require.NoError(t, err)
	assert.Equal(t, "steps/2", step.Key)
	assert.Equal(t, domain.Direct("3"), step.Next)
}
