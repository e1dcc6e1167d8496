// Package tui provides an interactive terminal user interface for price
// collection. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Catalog reloads the catalog and reports its stats. Optional.
	Catalog driving.CatalogService

	// Suggestions provides debounced typeahead.
	Suggestions driving.SuggestionService

	// Resolver maps a completed query to a product.
	Resolver driving.ResolverService

	// Observations records and lists observations.
	Observations driving.ObservationService

	// Export writes the observation list. Optional.
	Export driving.ExportService

	// Prices formats amounts for display.
	Prices driving.PriceFormatter

	// Settings supplies the default search field. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Suggestions == nil {
		return ErrMissingSuggestionService
	}
	if p.Resolver == nil {
		return ErrMissingResolverService
	}
	if p.Observations == nil {
		return ErrMissingObservationService
	}
	if p.Prices == nil {
		return ErrMissingPriceFormatter
	}
	return nil
}
