package ports

import "github.com/aretw0/formwizard/pkg/domain"

// Form is the value-store collaborator consulted on every transition.
type Form interface {
	// Values returns a snapshot of the current values.
	Values() map[string]any
	// RegisteredFields returns the field paths live on the active step.
	RegisteredFields() []string
	// Valid reports whether the live fields currently pass validation.
	Valid() bool
}

// FieldRegistrar is implemented by forms that need to know which step became active.
type FieldRegistrar interface {
	Register(fields []domain.Field) error
}
