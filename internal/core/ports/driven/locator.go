package driven

import (
	"context"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// Locator supplies the device location.
// It is queried once per session, never per observation.
type Locator interface {
	Locate(ctx context.Context) (domain.Location, error)
}
