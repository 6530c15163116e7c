package ports

import (
	"context"

	"github.com/aretw0/formwizard/pkg/domain"
)

// DefinitionLoader defines how the engine retrieves a wizard definition.
// This allows the storage layer (file, Loam, memory) to be decoupled.
type DefinitionLoader interface {
	// Load returns the complete definition. Step order is preserved.
	Load(ctx context.Context) (*domain.Definition, error)
}

// StepLister is implemented by loaders that can enumerate step keys without decoding everything.
// It is used by introspection commands such as 'formwizard graph'.
type StepLister interface {
	ListSteps(ctx context.Context) ([]string, error)
}
