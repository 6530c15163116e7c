package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/formwizard/internal/runtime"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, steps []domain.StepDefinition, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	reg, err := registry.New(steps)
	require.NoError(t, err)
	engine, err := runtime.NewEngine(reg, opts...)
	require.NoError(t, err)
	return engine
}

func chain(n int) []domain.StepDefinition {
	keys := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	steps := make([]domain.StepDefinition, n)
	for i := 0; i < n; i++ {
		steps[i] = domain.StepDefinition{
			Key:    keys[i],
			Title:  "Step " + keys[i],
			Fields: []domain.Field{{Name: "f" + keys[i]}},
		}
		if i < n-1 {
			steps[i].Next = domain.Direct(keys[i+1])
		}
	}
	return steps
}

// branching: A(1) picks B(2) or C(3); both lead to D(4).
func branching() []domain.StepDefinition {
	return []domain.StepDefinition{
		{Key: "1", Title: "A", Fields: []domain.Field{{Name: "x"}, {Name: "picks"}},
			Next: domain.Conditional("picks", map[string]string{"B": "2", "C": "3"})},
		{Key: "2", Title: "B", Fields: []domain.Field{{Name: "y"}}, Next: domain.Direct("4")},
		{Key: "3", Title: "C", Fields: []domain.Field{{Name: "y"}}, Next: domain.Direct("4")},
		{Key: "4", Title: "D"},
	}
}

func TestBuildStatic_ChainLength(t *testing.T) {
	for n := 1; n <= 8; n++ {
		reg, err := registry.New(chain(n))
		require.NoError(t, err)

		schema, err := runtime.BuildStatic(reg)
		require.NoError(t, err)
		require.Len(t, schema, n)
		for i, entry := range schema {
			assert.Equal(t, i, entry.Index)
			assert.True(t, entry.Primary)
		}
	}
}

func TestBuildStatic_Grouping(t *testing.T) {
	reg, err := registry.New([]domain.StepDefinition{
		{Key: "1", Title: "Intro", Next: domain.Direct("2")},
		{Key: "2", Title: "Name", SubstepOf: "group1", Next: domain.Direct("3")},
		{Key: "3", Title: "Address", SubstepOf: "group1", Next: domain.Direct("4")},
		{Key: "4", Title: "Phone", SubstepOf: "group1", Next: domain.Direct("5")},
		{Key: "5", Title: "Review"},
	})
	require.NoError(t, err)

	schema, err := runtime.BuildStatic(reg)
	require.NoError(t, err)
	require.Len(t, schema, 5)

	assert.True(t, schema[1].Primary)
	assert.False(t, schema[2].Primary)
	assert.False(t, schema[3].Primary)
	for _, e := range schema[1:4] {
		assert.Equal(t, "group1", e.SubstepOf)
	}
	assert.True(t, schema[4].Primary)
	assert.Equal(t, 3, domain.GroupSize(schema, schema[1]))
}

func TestBuildStatic_StopsAtUnknownSuccessor(t *testing.T) {
	reg, err := registry.New([]domain.StepDefinition{
		{Key: "1", Next: domain.Direct("2")},
		{Key: "2", Next: domain.Direct("missing")},
	})
	require.NoError(t, err)

	schema, err := runtime.BuildStatic(reg)
	require.NoError(t, err)
	assert.Len(t, schema, 2)
}

func TestBuildStatic_RejectsLoop(t *testing.T) {
	reg, err := registry.New([]domain.StepDefinition{
		{Key: "1", Next: domain.Direct("2")},
		{Key: "2", Next: domain.Direct("1")},
	})
	require.NoError(t, err)

	_, err = runtime.BuildStatic(reg)
	assert.ErrorContains(t, err, "loops")
}

func TestExtend(t *testing.T) {
	seed := runtime.BuildDynamicSeed(domain.StepDefinition{Key: "1", Title: "A"})
	grown := runtime.Extend(seed, domain.StepDefinition{Key: "2", Title: "B", SubstepOf: "g"})
	grown = runtime.Extend(grown, domain.StepDefinition{Key: "3", Title: "C", SubstepOf: "g"})

	require.Len(t, seed, 1, "input schema must not be modified")
	require.Len(t, grown, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{grown[0].Index, grown[1].Index, grown[2].Index})
	assert.True(t, grown[1].Primary)
	assert.False(t, grown[2].Primary)
}

func TestNewEngine_MissingFirstStep(t *testing.T) {
	reg, err := registry.New([]domain.StepDefinition{{Key: "2"}})
	require.NoError(t, err)

	_, err = runtime.NewEngine(reg)
	assert.ErrorIs(t, err, domain.ErrFirstStepMissing)
}

func TestEngine_StaticRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(3))
	assert.False(t, engine.IsDynamic())

	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	schema := append([]domain.NavEntry{}, state.NavSchema...)

	state, err = engine.Next(ctx, state, nil, []string{"f1"})
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, []string{"f2"})
	require.NoError(t, err)
	assert.Equal(t, "3", state.ActiveStep)
	assert.Equal(t, 2, state.ActiveStepIndex)
	assert.Equal(t, []string{"1", "2"}, state.PrevSteps)

	state, err = engine.JumpTo(ctx, state, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "1", state.ActiveStep)
	assert.Equal(t, 0, state.ActiveStepIndex)
	assert.Equal(t, 2, state.MaxStepIndex)
	assert.Equal(t, []string{"1", "2", "3"}, state.PrevSteps)
	assert.Equal(t, schema, state.NavSchema, "static schema never changes")

	_, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
}

func TestEngine_JumpToCurrentIndexIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, steps := range [][]domain.StepDefinition{chain(3), branching()} {
		engine := newEngine(t, steps)
		state, err := engine.Start(ctx, "s1")
		require.NoError(t, err)
		state.Values["picks"] = "B"
		state, err = engine.Next(ctx, state, nil, nil)
		require.NoError(t, err)

		jumped, err := engine.JumpTo(ctx, state, state.ActiveStepIndex, true)
		require.NoError(t, err)
		assert.Equal(t, state, jumped)

		jumped, err = engine.JumpTo(ctx, state, state.ActiveStepIndex, false)
		require.NoError(t, err)
		assert.Equal(t, state, jumped)
	}
}

func TestEngine_JumpOutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(3))
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	for _, idx := range []int{-1, 1, 5} {
		jumped, err := engine.JumpTo(ctx, state, idx, true)
		require.NoError(t, err)
		assert.Equal(t, state, jumped)
	}
}

func TestEngine_DynamicSchemaTracksHistory(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, branching())
	require.True(t, engine.IsDynamic())

	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, state.NavSchema, 1)

	state.Values["picks"] = "C"
	for _, want := range []string{"3", "4"} {
		state, err = engine.Next(ctx, state, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, want, state.ActiveStep)
		assert.Len(t, state.NavSchema, len(state.PrevSteps)+1)
	}
	assert.Equal(t, []string{"1", "3", "4"}, []string{state.NavSchema[0].Key, state.NavSchema[1].Key, state.NavSchema[2].Key})

	_, err = engine.Next(ctx, state, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoNextStep)
}

func TestEngine_DynamicJumpTruncates(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, branching())

	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	state.Values["picks"] = "C"
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)

	state, err = engine.JumpTo(ctx, state, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "1", state.ActiveStep)
	assert.Equal(t, []string{"1"}, state.PrevSteps)
	assert.Len(t, state.NavSchema, 1)

	state.Values["picks"] = "B"
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", state.ActiveStep)
	assert.Equal(t, "B", state.NavSchema[1].Title)
}

func TestEngine_AdvanceUnknownStep(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(2))
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	_, err = engine.Advance(ctx, state, "nope", nil)
	var notFound *runtime.StepNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Key)
	assert.Equal(t, "1", notFound.From)
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}

func TestEngine_BranchWithoutMatchIsTerminal(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, branching())
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	state.Values["picks"] = "Z"
	_, err = engine.Next(ctx, state, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoNextStep)

	view, err := engine.Render(state, true)
	require.NoError(t, err)
	assert.True(t, view.Buttons.Terminal)
	assert.Equal(t, "Submit", view.Buttons.Primary)
}

func TestEngine_InvalidGating(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(4))
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		state, err = engine.Next(ctx, state, nil, nil)
		require.NoError(t, err)
	}
	state, err = engine.JumpTo(ctx, state, 1, true)
	require.NoError(t, err)
	require.Equal(t, 3, state.MaxStepIndex)

	for _, entry := range state.NavSchema {
		assert.Equal(t, entry.Index <= state.ActiveStepIndex, runtime.Reachable(state, entry, false))
		assert.True(t, runtime.Reachable(state, entry, true))
	}

	// Jumping while invalid clamps history one past the target.
	clamped, err := engine.JumpTo(ctx, state, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "1", clamped.ActiveStep)
	assert.Equal(t, []string{"1", "2"}, clamped.PrevSteps)
	assert.Equal(t, 1, clamped.MaxStepIndex)
	assert.True(t, runtime.Reachable(clamped, clamped.NavSchema[1], true))
	assert.False(t, runtime.Reachable(clamped, clamped.NavSchema[2], true))
}

func TestEngine_BackDoesNotClamp(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(3))
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)

	state, err = engine.Back(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "2", state.ActiveStep)
	assert.Equal(t, 2, state.MaxStepIndex)

	state, err = engine.Back(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "1", state.ActiveStep)

	same, err := engine.Back(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, state, same)
}

func TestEngine_IsCurrentGroup(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, []domain.StepDefinition{
		{Key: "1", Title: "Intro", Next: domain.Direct("2")},
		{Key: "2", Title: "Name", SubstepOf: "g", Next: domain.Direct("3")},
		{Key: "3", Title: "Address", SubstepOf: "g", Next: domain.Direct("4")},
		{Key: "4", Title: "Review"},
	})
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)

	assert.False(t, runtime.IsCurrent(state, state.NavSchema[0]))
	assert.True(t, runtime.IsCurrent(state, state.NavSchema[1]), "group leader covers the whole group")
	assert.True(t, runtime.IsCurrent(state, state.NavSchema[2]))
	assert.False(t, runtime.IsCurrent(state, state.NavSchema[3]))

	view, err := engine.Render(state, true)
	require.NoError(t, err)
	require.Len(t, view.Nav, 3)
	assert.True(t, view.Nav[1].Current)
	assert.Equal(t, "g", view.Nav[1].Title)
	require.Len(t, view.Nav[1].Substeps, 2)
	assert.Equal(t, "Name", view.Nav[1].Substeps[0].Title)
	assert.False(t, view.Nav[1].Substeps[0].Current)
	assert.True(t, view.Nav[1].Substeps[1].Current)
	assert.True(t, view.Nav[2].Disabled)
}

func TestEngine_SingleMemberGroup(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, []domain.StepDefinition{
		{Key: "1", Title: "Intro", Next: domain.Direct("2")},
		{Key: "2", Title: "Address", SubstepOf: "Contact", Next: domain.Direct("3")},
		{Key: "3", Title: "Review"},
	})
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)

	view, err := engine.Render(state, true)
	require.NoError(t, err)
	require.Len(t, view.Nav, 3)
	assert.Empty(t, view.Nav[0].Substeps)

	group := view.Nav[1]
	assert.Equal(t, "Contact", group.Title)
	assert.True(t, group.Current)
	require.Len(t, group.Substeps, 1)
	assert.Equal(t, "Address", group.Substeps[0].Title)
	assert.Equal(t, 1, group.Substeps[0].Index)
	assert.True(t, group.Substeps[0].Current)
}

func TestEngine_NotActive(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, chain(2))
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)

	cancelled, err := engine.Cancel(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.StatusActive, state.Status, "input state is not mutated")

	_, err = engine.Next(ctx, cancelled, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotActive)
	_, err = engine.JumpTo(ctx, cancelled, 0, true)
	assert.ErrorIs(t, err, domain.ErrNotActive)
	_, err = engine.Submit(ctx, cancelled, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotActive)
	_, err = engine.Cancel(ctx, cancelled)
	assert.ErrorIs(t, err, domain.ErrNotActive)
}

func TestEngine_FieldDefaults(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(t, []domain.StepDefinition{
		{Key: "1", Fields: []domain.Field{{Name: "plan", Default: "basic"}}, Next: domain.Direct("2")},
		{Key: "2", Fields: []domain.Field{{Name: "address.country", Default: "BR"}, {Name: "seats", Default: 1}}},
	})
	state, err := engine.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "basic", state.Values["plan"])

	state.Values["seats"] = 5
	state, err = engine.Next(ctx, state, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"country": "BR"}, state.Values["address"])
	assert.Equal(t, 5, state.Values["seats"], "defaults never overwrite entered values")
}
