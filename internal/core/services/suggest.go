package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure SuggestionEngine implements the interface.
var _ driving.SuggestionService = (*SuggestionEngine)(nil)

// Suggestion defaults.
const (
	DefaultSuggestionLimit = 10
	DefaultDebounceWindow  = 300 * time.Millisecond
)

// SuggestionEngine serves typeahead suggestions from the current catalog generation.
type SuggestionEngine struct {
	catalog *CatalogService
	limit   int
	minLen  int
	window  time.Duration
	clock   Clock
	metrics driven.Metrics

	mu         sync.Mutex
	debouncers map[domain.SearchField]*Debouncer
}

// NewSuggestionEngine creates a suggestion engine.
// Non-positive limit and window values fall back to the defaults.
func NewSuggestionEngine(catalog *CatalogService, settings domain.SearchSettings) *SuggestionEngine {
	limit := settings.SuggestionLimit
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	minLen := settings.MinQueryLength
	if minLen < 1 {
		minLen = 1
	}
	window := settings.DebounceWindow
	if window <= 0 {
		window = DefaultDebounceWindow
	}

	return &SuggestionEngine{
		catalog:    catalog,
		limit:      limit,
		minLen:     minLen,
		window:     window,
		clock:      SystemClock{},
		metrics:    nopMetrics{},
		debouncers: make(map[domain.SearchField]*Debouncer),
	}
}

// SetClock replaces the clock used for debouncing. Must be called before Request.
func (s *SuggestionEngine) SetClock(clock Clock) {
	s.clock = clock
}

// SetMetrics sets the metrics recorder.
func (s *SuggestionEngine) SetMetrics(m driven.Metrics) {
	s.metrics = metricsOrNop(m)
}

// Suggest evaluates the query immediately against the current generation.
func (s *SuggestionEngine) Suggest(field domain.SearchField, query string) domain.SuggestionSet {
	idx := s.catalog.Current()
	suggestions := idx.Suggest(field, query, s.limit, s.minLen)
	s.metrics.SuggestionServed(field.String(), len(suggestions))
	logger.Debug("suggestions evaluated",
		"field", field, "query", query, "generation", idx.Generation(), "results", len(suggestions))

	return domain.SuggestionSet{
		Field:       field,
		Query:       query,
		Generation:  idx.Generation(),
		Suggestions: suggestions,
	}
}

// Request schedules a debounced evaluation for the field. A later Request
// for the same field inside the window supersedes this one.
func (s *SuggestionEngine) Request(field domain.SearchField, query string, deliver func(domain.SuggestionSet)) {
	s.debouncer(field).Schedule(func() {
		deliver(s.Suggest(field, query))
	})
}

// Cancel drops any pending evaluation for the field.
func (s *SuggestionEngine) Cancel(field domain.SearchField) {
	s.debouncer(field).Cancel()
}

// Pending reports whether an evaluation is waiting for the field.
func (s *SuggestionEngine) Pending(field domain.SearchField) bool {
	return s.debouncer(field).Pending()
}

func (s *SuggestionEngine) debouncer(field domain.SearchField) *Debouncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debouncers[field]
	if !ok {
		d = NewDebouncer(s.window, s.clock)
		s.debouncers[field] = d
	}
	return d
}
