package collections

import "context"

// Repository stores named blobs.
type Repository interface {
	// Get returns the value for key, or (nil, nil) if it is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key with its value.
	List(ctx context.Context) (map[string][]byte, error)

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Apply sets every key of changes in one transaction; a nil value
	// deletes the key.
	Apply(ctx context.Context, changes map[string][]byte) error

	// Replace makes values the complete content of the repository in one
	// transaction.
	Replace(ctx context.Context, values map[string][]byte) error
}
