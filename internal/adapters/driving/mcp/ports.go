package mcp

import (
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Suggestions serves typeahead suggestions.
	Suggestions driving.SuggestionService

	// Resolver resolves a completed query to a product.
	Resolver driving.ResolverService

	// Observations records and lists observations.
	Observations driving.ObservationService

	// Export writes the observation list. Optional.
	Export driving.ExportService

	// Catalog reports catalog statistics. Optional.
	Catalog driving.CatalogService

	// Prices formats prices for display. Optional.
	Prices driving.PriceFormatter
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
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
	return nil
}
