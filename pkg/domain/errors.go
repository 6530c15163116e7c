package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFirstStepMissing is returned when no step carries the canonical first key.
var ErrFirstStepMissing = errors.New("first step missing")

// ErrStepNotFound is returned when a transition targets a key absent from the registry.
var ErrStepNotFound = errors.New("step not found")

// ErrNoNextStep is returned when the active step resolves to no successor.
// Hosts present the Submit action in that case.
var ErrNoNextStep = errors.New("no next step")

// ErrNotActive is returned when a transition is attempted on a submitted or cancelled session.
var ErrNotActive = errors.New("session is not active")
