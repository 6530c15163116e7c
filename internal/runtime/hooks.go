package runtime

import (
	"context"

	"github.com/aretw0/formwizard/pkg/domain"
)

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepEnter, state),
		StepKey:   state.ActiveStep,
		Index:     state.ActiveStepIndex,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepLeave, state),
		StepKey:   state.ActiveStep,
		Index:     state.ActiveStepIndex,
	})
}

func (e *Engine) emitJump(ctx context.Context, state *domain.State, from string, valid bool) {
	if e.hooks.OnJump == nil {
		return
	}
	e.hooks.OnJump(ctx, &domain.JumpEvent{
		EventBase: e.base(domain.EventJump, state),
		From:      from,
		To:        state.ActiveStep,
		Index:     state.ActiveStepIndex,
		FormValid: valid,
	})
}

func (e *Engine) emitSubmit(ctx context.Context, state *domain.State, visited []string) {
	if e.hooks.OnSubmit == nil {
		return
	}
	e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase: e.base(domain.EventSubmit, state),
		Visited:   visited,
		Result:    state.Result,
	})
}

func (e *Engine) emitCancel(ctx context.Context, state *domain.State) {
	if e.hooks.OnCancel == nil {
		return
	}
	e.hooks.OnCancel(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventCancel, state),
		StepKey:   state.ActiveStep,
		Index:     state.ActiveStepIndex,
	})
}
