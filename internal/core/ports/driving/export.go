package driving

import (
	"context"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// ExportService serializes the observation list for sharing.
type ExportService interface {
	// Text returns the delimited text export of the current list.
	Text() string

	// Export writes the delimited text file and uploads the JSON list when enabled.
	Export(ctx context.Context) (domain.ExportResult, error)
}
