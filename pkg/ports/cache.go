package ports

import (
	"context"
)

// Cache stores rendered automata by key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key.
	// Returns domain.ErrCacheMiss if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys.
	Keys(ctx context.Context) ([]string, error)
}
