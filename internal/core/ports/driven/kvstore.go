package driven

import "context"

// KeyValueStore is durable string storage keyed by name.
// Set must replace the value atomically: readers see either the previous
// value or the new one, never a partial write.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
