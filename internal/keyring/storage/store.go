// Package storage persists the keyring state. The state is always
// written as a whole serialized document; there is no partial
// persistence, so the in-memory and durable views can never diverge
// silently.
package storage

import "context"

// Store loads and saves the serialized keyring state.
type Store interface {
	// Load returns the previously saved state, or nil when no state
	// has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored state atomically.
	Save(ctx context.Context, data []byte) error
}
