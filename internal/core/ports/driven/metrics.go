package driven

import "time"

// Metrics records operational counters for the core services.
type Metrics interface {
	// CatalogLoaded records a load attempt and, on success, the record count.
	CatalogLoaded(success bool, records int, took time.Duration)

	// SuggestionServed records one suggestion evaluation.
	SuggestionServed(field string, results int)

	// ResolveLookup records a resolver lookup and whether the cache answered it.
	ResolveLookup(field string, cacheHit bool)

	// ObservationConfirmed records a confirm outcome such as "ok" or "duplicate".
	ObservationConfirmed(outcome string)

	// PersistCompleted records one persist of the observation list.
	PersistCompleted(success bool, took time.Duration)
}
