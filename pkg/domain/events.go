package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventJump      EventType = "jump"
	EventSubmit    EventType = "submit"
	EventCancel    EventType = "cancel"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entering or leaving a step.
type StepEvent struct {
	EventBase
	StepKey string `json:"step_key"`
	Index   int    `json:"index"`
}

// JumpEvent is emitted when a navigation link moves the wizard to an already visited index.
type JumpEvent struct {
	EventBase
	From      string `json:"from"`
	To        string `json:"to"`
	Index     int    `json:"index"`
	FormValid bool   `json:"form_valid"`
}

// SubmitEvent carries the reduced submission object.
type SubmitEvent struct {
	EventBase
	Visited []string       `json:"visited"`
	Result  map[string]any `json:"result"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnJump      func(context.Context, *JumpEvent)
	OnSubmit    func(context.Context, *SubmitEvent)
	OnCancel    func(context.Context, *StepEvent)
}

// Merge chains two hook sets; h runs before other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave: chain(h.OnStepLeave, other.OnStepLeave),
		OnJump:      chain(h.OnJump, other.OnJump),
		OnSubmit:    chain(h.OnSubmit, other.OnSubmit),
		OnCancel:    chain(h.OnCancel, other.OnCancel),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
