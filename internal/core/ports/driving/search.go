package driving

import "github.com/custodia-labs/pricecollect/internal/core/domain"

// SuggestionService provides typeahead suggestions to external actors.
type SuggestionService interface {
	// Suggest evaluates the query immediately against the current generation.
	Suggest(field domain.SearchField, query string) domain.SuggestionSet

	// Request schedules a debounced evaluation. Only the last request in a
	// burst per field is evaluated; deliver is called from a timer goroutine.
	Request(field domain.SearchField, query string, deliver func(domain.SuggestionSet))

	// Cancel drops any pending evaluation for the field.
	Cancel(field domain.SearchField)
}

// ResolverService resolves a completed query to a single product.
type ResolverService interface {
	// Resolve returns the matching product and true, or false when nothing matches.
	Resolve(field domain.SearchField, query string) (domain.ProductRecord, bool)
}
