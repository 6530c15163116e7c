package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/values"
)

// Record stores (or overwrites) the field names live on stepKey.
func Record(state *domain.State, stepKey string, fields []string) {
	if state.RegisteredFieldsHistory == nil {
		state.RegisteredFieldsHistory = make(map[string][]string)
	}
	state.RegisteredFieldsHistory[stepKey] = append([]string{}, fields...)
}

// Reduce copies from store only the fields registered by the visited steps.
// Nested paths keep their structure; paths absent from store are omitted.
func Reduce(store map[string]any, history map[string][]string, visited []string) (map[string]any, error) {
	result := make(map[string]any)
	seen := make(map[string]bool)

	for _, key := range visited {
		for _, path := range history[key] {
			if seen[path] {
				continue
			}
			seen[path] = true

			v, ok := values.Get(store, path)
			if !ok {
				continue
			}
			if err := values.Set(result, path, v); err != nil {
				return nil, fmt.Errorf("reduce %s: %w", path, err)
			}
		}
	}
	return result, nil
}

// Submit records the active step's fields, reduces the store to the visited fields
// and marks the session submitted. The reduced object is stored in State.Result.
// Registered fields with no value in the store are absent from Result, not set to nil.
func (e *Engine) Submit(ctx context.Context, state *domain.State, store map[string]any, registered []string) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}
	if store == nil {
		store = state.Values
	}

	next := state.Clone()
	Record(next, next.ActiveStep, registered)

	visited := next.Visited()
	result, err := Reduce(store, next.RegisteredFieldsHistory, visited)
	if err != nil {
		return nil, err
	}
	next.Result = result
	next.Status = domain.StatusSubmitted

	e.logger.Info("wizard submitted", "session_id", next.SessionID, "visited", len(visited), "fields", len(result))
	e.emitSubmit(ctx, next, slices.Clone(visited))
	return next, nil
}

// Cancel marks the session cancelled. Values are kept; no result is produced.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) (*domain.State, error) {
	if !state.IsActive() {
		return nil, domain.ErrNotActive
	}
	next := state.Clone()
	next.Status = domain.StatusCancelled

	e.logger.Info("wizard cancelled", "session_id", next.SessionID, "step", next.ActiveStep)
	e.emitCancel(ctx, next)
	return next, nil
}
