// Package middleware wraps a session StateStore with storage-side behavior:
// encryption at rest and masking of sensitive form values.
package middleware

import "github.com/aretw0/formwizard/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain wraps store so that the first middleware sees calls first.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
