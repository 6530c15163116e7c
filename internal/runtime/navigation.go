package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/values"
)

// ResolveNext returns the successor of the active step given the current values.
// ok is false when the step is terminal or its branch value has no mapping.
func (e *Engine) ResolveNext(state *domain.State, store map[string]any) (string, bool, error) {
	step, err := e.Step(state)
	if err != nil {
		return "", false, err
	}
	if store == nil {
		store = state.Values
	}
	target, ok := step.Next.Resolve(values.Lookup(store))
	return target, ok, nil
}

// Next advances to the successor resolved from the active step's next_step.
// It returns ErrNoNextStep when the host should offer Submit instead.
func (e *Engine) Next(ctx context.Context, state *domain.State, store map[string]any, registered []string) (*domain.State, error) {
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}
	target, ok, err := e.ResolveNext(state, store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: step %q", domain.ErrNoNextStep, state.ActiveStep)
	}
	return e.Advance(ctx, state, target, registered)
}

// Advance moves forward to target, recording the fields registered on the step being left.
func (e *Engine) Advance(ctx context.Context, state *domain.State, target string, registered []string) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}

	target = domain.NormalizeKey(target)
	step, ok := e.registry.FindByKey(target)
	if !ok {
		e.logger.Error("transition to unknown step", "session_id", state.SessionID, "from", state.ActiveStep, "to", target)
		return nil, &StepNotFoundError{Key: target, From: state.ActiveStep}
	}

	e.emitStepLeave(ctx, state)

	next := state.Clone()
	Record(next, state.ActiveStep, registered)
	if !slices.Contains(next.PrevSteps, state.ActiveStep) {
		next.PrevSteps = append(next.PrevSteps, state.ActiveStep)
	}
	next.ActiveStep = step.Key
	next.ActiveStepIndex = state.ActiveStepIndex + 1
	next.MaxStepIndex = max(next.MaxStepIndex, next.ActiveStepIndex)
	if next.Dynamic {
		next.NavSchema = Extend(next.NavSchema, step)
	}

	for _, f := range step.Fields {
		if f.Default == nil {
			continue
		}
		if _, present := values.Get(next.Values, f.Name); !present {
			if err := setDefault(next.Values, f); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Debug("advanced", "session_id", next.SessionID, "from", state.ActiveStep, "to", next.ActiveStep, "index", next.ActiveStepIndex)
	e.emitStepEnter(ctx, next)
	return next, nil
}

// JumpTo moves to an already visited index, as a navigation link does.
// An index with no visited step behind it leaves the state unchanged.
// With valid false, forward navigation is frozen one step past the target.
func (e *Engine) JumpTo(ctx context.Context, state *domain.State, index int, valid bool) (*domain.State, error) {
	return e.jump(ctx, state, index, !valid, valid)
}

// Back moves to the previous index. It never clamps history.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.jump(ctx, state, state.ActiveStepIndex-1, false, true)
}

func (e *Engine) jump(ctx context.Context, state *domain.State, index int, clamp, valid bool) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}
	if index < 0 || index >= len(state.PrevSteps) {
		e.logger.Debug("jump ignored", "session_id", state.SessionID, "index", index, "visited", len(state.PrevSteps))
		return state.Clone(), nil
	}

	from := state.ActiveStep
	next := state.Clone()
	next.ActiveStep = state.PrevSteps[index]
	if !slices.Contains(next.PrevSteps, from) {
		next.PrevSteps = append(next.PrevSteps, from)
	}
	next.ActiveStepIndex = index

	if next.Dynamic {
		next.NavSchema = next.NavSchema[:min(len(next.NavSchema), index+1)]
		next.PrevSteps = next.PrevSteps[:min(len(next.PrevSteps), index+1)]
	}

	if clamp {
		next.PrevSteps = next.PrevSteps[:min(len(next.PrevSteps), index+2)]
		next.MaxStepIndex = min(len(next.PrevSteps), index+1)
	}

	if from != next.ActiveStep {
		e.emitStepLeave(ctx, state)
		e.emitStepEnter(ctx, next)
	}
	e.emitJump(ctx, next, from, valid)
	e.logger.Debug("jumped", "session_id", next.SessionID, "from", from, "to", next.ActiveStep, "index", index, "valid", valid)
	return next, nil
}

// Reachable reports whether a navigation link to entry is enabled.
func Reachable(state *domain.State, entry domain.NavEntry, valid bool) bool {
	if valid {
		return entry.Index <= state.MaxStepIndex
	}
	return entry.Index <= state.ActiveStepIndex
}

// IsCurrent reports whether entry should be highlighted as the active link.
// A grouped primary entry covers the indexes of its whole group.
func IsCurrent(state *domain.State, entry domain.NavEntry) bool {
	if size := domain.GroupSize(state.NavSchema, entry); size > 0 {
		return state.ActiveStepIndex >= entry.Index && state.ActiveStepIndex < entry.Index+size
	}
	return state.ActiveStepIndex == entry.Index
}

func setDefault(store map[string]any, f domain.Field) error {
	if err := values.Set(store, f.Name, f.Default); err != nil {
		return fmt.Errorf("default for %s: %w", f.Name, err)
	}
	return nil
}
