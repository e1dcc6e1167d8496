package driving

import (
	"context"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// CatalogService loads catalog snapshots and reports on the current generation.
type CatalogService interface {
	// Load fetches, parses and swaps in a new catalog generation.
	// On failure the previous generation keeps serving.
	Load(ctx context.Context) (domain.CatalogStats, error)

	// Stats describes the generation currently being served.
	Stats() domain.CatalogStats
}
