package formwizard

import (
	"context"
	"sync"

	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/form"
	"github.com/aretw0/formwizard/pkg/ports"
)

// Session binds one wizard traversal to a live form.
// The form is the source of values, registered fields and validity; the session
// feeds them to the engine on every transition and re-registers the fields of the
// step that becomes active.
type Session struct {
	mu     sync.Mutex
	engine *Engine
	form   ports.Form
	state  *domain.State
}

// NewSession starts a traversal. A nil form is replaced by a *form.Form.
func (e *Engine) NewSession(ctx context.Context, sessionID string, f ports.Form) (*Session, error) {
	if f == nil {
		f = form.New(nil)
	}
	state, err := e.Start(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s := &Session{engine: e, form: f, state: state}
	if err := s.register(); err != nil {
		return nil, err
	}
	return s, nil
}

// Resume wraps an existing state (for instance loaded from a StateStore).
func (e *Engine) Resume(state *domain.State, f ports.Form) (*Session, error) {
	if f == nil {
		f = form.New(state.Values)
	}
	s := &Session{engine: e, form: f, state: state.Clone()}
	if err := s.register(); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns a copy of the current state with the form values attached.
func (s *Session) State() *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return s.state.Clone()
}

// Form returns the form bound to the session.
func (s *Session) Form() ports.Form {
	return s.form
}

// View renders the active step using the form's current validity.
func (s *Session) View() (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return s.engine.Render(s.state, s.form.Valid())
}

// OnAdvance moves to an explicit target step.
func (s *Session) OnAdvance(ctx context.Context, target string) (*domain.State, error) {
	return s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.Advance(ctx, st, target, s.form.RegisteredFields())
	})
}

// Next advances to the successor resolved against the form values.
func (s *Session) Next(ctx context.Context) (*domain.State, error) {
	return s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.Next(ctx, st, st.Values, s.form.RegisteredFields())
	})
}

// OnBack moves to the previous step.
func (s *Session) OnBack(ctx context.Context) (*domain.State, error) {
	return s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.Back(ctx, st)
	})
}

// OnNavJump follows a navigation link to an already visited index.
func (s *Session) OnNavJump(ctx context.Context, index int) (*domain.State, error) {
	return s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.JumpTo(ctx, st, index, s.form.Valid())
	})
}

// OnSubmit finishes the wizard and returns the reduced values.
func (s *Session) OnSubmit(ctx context.Context) (map[string]any, error) {
	st, err := s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.Submit(ctx, st, st.Values, s.form.RegisteredFields())
	})
	if err != nil {
		return nil, err
	}
	return st.Result, nil
}

// OnCancel ends the wizard without a result.
func (s *Session) OnCancel(ctx context.Context) error {
	_, err := s.transition(func(st *domain.State) (*domain.State, error) {
		return s.engine.Cancel(ctx, st)
	})
	return err
}

func (s *Session) transition(fn func(*domain.State) (*domain.State, error)) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sync()
	prev := s.state.ActiveStep
	next, err := fn(s.state)
	if err != nil {
		return nil, err
	}
	s.state = next
	if next.ActiveStep != prev && next.IsActive() {
		if err := s.register(); err != nil {
			return nil, err
		}
		s.sync()
	}
	return s.state.Clone(), nil
}

// sync copies the form values into the state. Callers hold mu.
func (s *Session) sync() {
	if s.state.IsActive() {
		s.state.Values = s.form.Values()
	}
}

func (s *Session) register() error {
	reg, ok := s.form.(ports.FieldRegistrar)
	if !ok {
		return nil
	}
	step, err := s.engine.runtime.Step(s.state)
	if err != nil {
		return err
	}
	return reg.Register(step.Fields)
}
