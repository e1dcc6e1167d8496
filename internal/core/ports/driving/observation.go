package driving

import (
	"context"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// ObservationService manages the observation list of the current session.
type ObservationService interface {
	// Confirm resolves the product and records an observation.
	Confirm(ctx context.Context, req domain.ConfirmRequest) (domain.Observation, error)

	// List returns the observations in recording order.
	List() []domain.Observation

	// StartSession begins a new session and takes its location snapshot.
	StartSession(ctx context.Context) domain.Session

	// Session returns the current session.
	Session() domain.Session

	// Stores returns the stores a competitor may be chosen from.
	Stores() []string

	// Persist writes the list to durable storage.
	Persist(ctx context.Context) error

	// Restore loads the last persisted list.
	Restore(ctx context.Context) error

	// Reset clears the list and starts a new session.
	Reset(ctx context.Context) error
}

// PriceFormatter renders minor currency units for display.
type PriceFormatter interface {
	// FormatCurrency renders a display string such as "R$ 12,34".
	FormatCurrency(minor int64) string

	// Canonical renders the canonical decimal form such as "12.34".
	Canonical(minor int64) string

	// Currency returns the ISO 4217 code the prices are in, such as "BRL".
	Currency() string
}
