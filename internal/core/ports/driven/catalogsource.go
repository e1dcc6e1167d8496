package driven

import "context"

// CatalogSource fetches the raw catalog snapshot.
// The payload is a JSON array of product rows; parsing is done by core.
type CatalogSource interface {
	// Fetch returns the full snapshot payload.
	Fetch(ctx context.Context) ([]byte, error)

	// Name describes the source for logs and stats.
	Name() string
}

// WatchableSource is a CatalogSource that can signal when its snapshot changed.
type WatchableSource interface {
	CatalogSource

	// Watch returns a channel that receives a value after each change.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
