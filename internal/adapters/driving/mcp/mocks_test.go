package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// mockSuggestionService is a mock implementation of driving.SuggestionService.
type mockSuggestionService struct {
	suggestions []string
	generation  uint64
}

func (m *mockSuggestionService) Suggest(field domain.SearchField, query string) domain.SuggestionSet {
	return domain.SuggestionSet{
		Field:       field,
		Query:       query,
		Generation:  m.generation,
		Suggestions: m.suggestions,
	}
}

func (m *mockSuggestionService) Request(field domain.SearchField, query string, deliver func(domain.SuggestionSet)) {
	deliver(m.Suggest(field, query))
}

func (m *mockSuggestionService) Cancel(_ domain.SearchField) {}

// mockResolverService is a mock implementation of driving.ResolverService.
type mockResolverService struct {
	records   map[string]domain.ProductRecord
	lastField domain.SearchField
}

func (m *mockResolverService) Resolve(field domain.SearchField, query string) (domain.ProductRecord, bool) {
	m.lastField = field
	r, ok := m.records[query]
	return r, ok
}

// mockObservationService is a mock implementation of driving.ObservationService.
type mockObservationService struct {
	list    []domain.Observation
	obs     domain.Observation
	err     error
	lastReq domain.ConfirmRequest
}

func (m *mockObservationService) Confirm(_ context.Context, req domain.ConfirmRequest) (domain.Observation, error) {
	m.lastReq = req
	return m.obs, m.err
}

func (m *mockObservationService) List() []domain.Observation {
	return m.list
}

func (m *mockObservationService) StartSession(_ context.Context) domain.Session {
	return m.Session()
}

func (m *mockObservationService) Session() domain.Session {
	return domain.Session{ID: "session-1"}
}

func (m *mockObservationService) Stores() []string {
	return domain.DefaultStores()
}

func (m *mockObservationService) Persist(_ context.Context) error {
	return nil
}

func (m *mockObservationService) Restore(_ context.Context) error {
	return nil
}

func (m *mockObservationService) Reset(_ context.Context) error {
	m.list = nil
	return nil
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	text   string
	result domain.ExportResult
	err    error
	calls  int
}

func (m *mockExportService) Text() string {
	return m.text
}

func (m *mockExportService) Export(_ context.Context) (domain.ExportResult, error) {
	m.calls++
	return m.result, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	stats domain.CatalogStats
}

func (m *mockCatalogService) Load(_ context.Context) (domain.CatalogStats, error) {
	return m.stats, nil
}

func (m *mockCatalogService) Stats() domain.CatalogStats {
	return m.stats
}

// mockPrices formats minor units with a plain two-decimal layout.
type mockPrices struct{}

func (mockPrices) FormatCurrency(minor int64) string {
	return fmt.Sprintf("$%d.%02d", minor/100, minor%100)
}

func (mockPrices) Canonical(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func (mockPrices) Currency() string {
	return "USD"
}

func requiredPorts() *Ports {
	return &Ports{
		Suggestions:  &mockSuggestionService{},
		Resolver:     &mockResolverService{},
		Observations: &mockObservationService{},
	}
}
