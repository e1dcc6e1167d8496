package collect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// --- Mock implementations ---

type request struct {
	field domain.SearchField
	query string
}

type mockSuggestions struct {
	mu        sync.Mutex
	requests  []request
	cancelled []domain.SearchField
}

func (m *mockSuggestions) Suggest(field domain.SearchField, query string) domain.SuggestionSet {
	return domain.SuggestionSet{Field: field, Query: query}
}

func (m *mockSuggestions) Request(field domain.SearchField, query string, _ func(domain.SuggestionSet)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, request{field: field, query: query})
}

func (m *mockSuggestions) Cancel(field domain.SearchField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, field)
}

type mockResolver struct {
	products map[string]domain.ProductRecord
}

func (m *mockResolver) Resolve(field domain.SearchField, query string) (domain.ProductRecord, bool) {
	p, ok := m.products[field.String()+":"+query]
	return p, ok
}

type mockObservations struct {
	stores   []string
	list     []domain.Observation
	requests []domain.ConfirmRequest
	obs      domain.Observation
	err      error
}

func (m *mockObservations) Confirm(_ context.Context, req domain.ConfirmRequest) (domain.Observation, error) {
	m.requests = append(m.requests, req)
	if m.obs.ProductKey != "" {
		m.list = append(m.list, m.obs)
	}
	return m.obs, m.err
}

func (m *mockObservations) List() []domain.Observation { return m.list }

func (m *mockObservations) StartSession(_ context.Context) domain.Session { return domain.Session{} }

func (m *mockObservations) Session() domain.Session { return domain.Session{} }

func (m *mockObservations) Stores() []string { return m.stores }

func (m *mockObservations) Persist(_ context.Context) error { return nil }

func (m *mockObservations) Restore(_ context.Context) error { return nil }

func (m *mockObservations) Reset(_ context.Context) error { return nil }

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

var dipirona = domain.ProductRecord{EAN: "7891234", Description: "Dipirona 1g", Brand: "Medley"}

type fixture struct {
	view         *View
	suggestions  *mockSuggestions
	observations *mockObservations
}

func newFixture(stores ...string) *fixture {
	f := &fixture{
		suggestions:  &mockSuggestions{},
		observations: &mockObservations{stores: stores},
	}
	resolver := &mockResolver{products: map[string]domain.ProductRecord{
		"ean:7891234":             dipirona,
		"description:Dipirona 1g": dipirona,
	}}
	f.view = NewView(nil, nil, Services{
		Suggestions:  f.suggestions,
		Resolver:     resolver,
		Observations: f.observations,
		Prices:       mockPrices{},
	}, domain.FieldEAN)
	f.view.SetDimensions(100, 40)
	return f
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(v *View, t tea.KeyType) tea.Cmd {
	_, cmd := v.Update(tea.KeyMsg{Type: t})
	return cmd
}

// --- Tests ---

func TestNewView(t *testing.T) {
	f := newFixture("Drogasil")

	assert.Equal(t, domain.FieldEAN, f.view.Field())
	assert.Equal(t, FocusQuery, f.view.Focus())
	assert.Equal(t, "Drogasil", f.view.Store())
	assert.Empty(t, f.view.Query())
	assert.NotNil(t, f.view.Init())
}

func TestNewView_InvalidFieldFallsBack(t *testing.T) {
	view := NewView(nil, nil, Services{Suggestions: &mockSuggestions{}}, domain.SearchField("bogus"))
	assert.Equal(t, domain.FieldEAN, view.Field())
}

func TestView_NotReady(t *testing.T) {
	view := NewView(nil, nil, Services{}, domain.FieldEAN)
	assert.Equal(t, "Initialising...", view.View())
}

func TestView_TypingRequestsSuggestions(t *testing.T) {
	f := newFixture()

	typeText(f.view, "789")

	assert.Equal(t, "789", f.view.Query())
	require.Len(t, f.suggestions.requests, 3)
	assert.Equal(t, request{field: domain.FieldEAN, query: "789"}, f.suggestions.requests[2])
}

func TestView_ClearingQueryCancels(t *testing.T) {
	f := newFixture()
	typeText(f.view, "7")
	f.view.Update(messages.SuggestionsReady{Set: domain.SuggestionSet{
		Field: domain.FieldEAN, Query: "7", Suggestions: []string{"7891234"},
	}})
	require.Len(t, f.view.Suggestions(), 1)

	press(f.view, tea.KeyBackspace)

	assert.Empty(t, f.view.Query())
	assert.Empty(t, f.view.Suggestions())
	assert.Contains(t, f.suggestions.cancelled, domain.FieldEAN)
	assert.Len(t, f.suggestions.requests, 1)
}

func TestView_SuggestionsReady(t *testing.T) {
	tests := []struct {
		name     string
		set      domain.SuggestionSet
		expected []string
	}{
		{
			name:     "current query",
			set:      domain.SuggestionSet{Field: domain.FieldEAN, Query: "78", Suggestions: []string{"7891234", "7800001"}},
			expected: []string{"7891234", "7800001"},
		},
		{
			name: "stale query",
			set:  domain.SuggestionSet{Field: domain.FieldEAN, Query: "7", Suggestions: []string{"7891234"}},
		},
		{
			name: "other field",
			set:  domain.SuggestionSet{Field: domain.FieldBrand, Query: "78", Suggestions: []string{"Medley"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			typeText(f.view, "78")

			_, cmd := f.view.Update(messages.SuggestionsReady{Set: tt.set})

			assert.NotNil(t, cmd)
			if tt.expected == nil {
				assert.Empty(t, f.view.Suggestions())
			} else {
				assert.Equal(t, tt.expected, f.view.Suggestions())
			}
		})
	}
}

func TestView_DeliverKeepsNewest(t *testing.T) {
	f := newFixture()

	f.view.deliver(domain.SuggestionSet{Query: "7"})
	f.view.deliver(domain.SuggestionSet{Query: "78"})

	cmd := f.view.listen()
	require.NotNil(t, cmd)
	assert.Nil(t, f.view.listen())
	assert.Equal(t, messages.SuggestionsReady{Set: domain.SuggestionSet{Query: "78"}}, cmd())
}

func TestView_ListenStopsOnCancel(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.view.WithContext(ctx)
	cancel()

	cmd := f.view.listen()
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
}

func TestView_NextFieldReevaluates(t *testing.T) {
	f := newFixture()
	typeText(f.view, "Dip")

	press(f.view, tea.KeyTab)

	assert.Equal(t, domain.FieldDescription, f.view.Field())
	assert.Equal(t, "Dip", f.view.Query())
	assert.Contains(t, f.suggestions.cancelled, domain.FieldEAN)
	last := f.suggestions.requests[len(f.suggestions.requests)-1]
	assert.Equal(t, request{field: domain.FieldDescription, query: "Dip"}, last)
}

func TestView_EnterAcceptsSuggestion(t *testing.T) {
	f := newFixture()
	f.view.SetField(domain.FieldDescription)
	typeText(f.view, "dip")
	f.view.Update(messages.SuggestionsReady{Set: domain.SuggestionSet{
		Field: domain.FieldDescription, Query: "dip", Suggestions: []string{"Dipirona 1g", "Dipirona 500mg"},
	}})

	press(f.view, tea.KeyDown)
	press(f.view, tea.KeyEnter)

	assert.Equal(t, "Dipirona 1g", f.view.Query())
	require.NotNil(t, f.view.Product())
	assert.Equal(t, "7891234", f.view.Product().EAN)
	assert.Equal(t, FocusStore, f.view.Focus())
	assert.Empty(t, f.view.Suggestions())
}

func TestView_EnterWithoutMatchWarns(t *testing.T) {
	f := newFixture()
	typeText(f.view, "000")

	press(f.view, tea.KeyEnter)

	assert.Nil(t, f.view.Product())
	assert.Equal(t, FocusQuery, f.view.Focus())
	assert.Equal(t, status.StateWarning, f.view.Status().State())
}

func TestView_EnterOnEmptyQueryStays(t *testing.T) {
	f := newFixture()

	press(f.view, tea.KeyEnter)

	assert.Equal(t, FocusQuery, f.view.Focus())
	assert.Equal(t, status.StateReady, f.view.Status().State())
}

func TestView_StoreSelector(t *testing.T) {
	f := newFixture("Drogasil", "Pague Menos", "Raia")
	typeText(f.view, "7891234")
	press(f.view, tea.KeyEnter)
	require.Equal(t, FocusStore, f.view.Focus())

	press(f.view, tea.KeyRight)
	assert.Equal(t, "Pague Menos", f.view.Store())

	press(f.view, tea.KeyLeft)
	press(f.view, tea.KeyLeft)
	assert.Equal(t, "Raia", f.view.Store())

	press(f.view, tea.KeyEnter)
	assert.Equal(t, FocusPrice, f.view.Focus())
}

func TestView_FreeTextStore(t *testing.T) {
	f := newFixture()
	typeText(f.view, "7891234")
	press(f.view, tea.KeyEnter)

	typeText(f.view, "Corner")

	assert.Equal(t, "Corner", f.view.Store())
}

func TestView_NextInputCycles(t *testing.T) {
	f := newFixture()

	press(f.view, tea.KeyShiftTab)
	assert.Equal(t, FocusStore, f.view.Focus())
	press(f.view, tea.KeyShiftTab)
	assert.Equal(t, FocusPrice, f.view.Focus())
	press(f.view, tea.KeyShiftTab)
	assert.Equal(t, FocusQuery, f.view.Focus())
}

func TestView_ConfirmFlow(t *testing.T) {
	f := newFixture("Drogasil")
	f.observations.obs = domain.Observation{
		Competitor: "Drogasil", ProductKey: "7891234", ProductName: "Dipirona 1g", PriceMinor: 1234,
	}

	typeText(f.view, "7891234")
	press(f.view, tea.KeyEnter)
	press(f.view, tea.KeyEnter)
	typeText(f.view, "1234")
	assert.Equal(t, "$12.34", f.view.Price().Formatted())

	cmd := press(f.view, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateWorking, f.view.Status().State())

	msg := cmd()
	require.Len(t, f.observations.requests, 1)
	assert.Equal(t, domain.ConfirmRequest{
		Field: domain.FieldEAN, Query: "7891234", Competitor: "Drogasil", RawPrice: "1234",
	}, f.observations.requests[0])

	f.view.Update(msg)

	assert.Equal(t, status.StateSaved, f.view.Status().State())
	assert.Equal(t, "Saved Dipirona 1g at Drogasil for $12.34", f.view.Status().Message())
	assert.Equal(t, 1, f.view.Status().Count())
	assert.Empty(t, f.view.Query())
	assert.True(t, f.view.Price().Empty())
	assert.Equal(t, FocusQuery, f.view.Focus())
	assert.Equal(t, "Drogasil", f.view.Store())
}

func TestView_ObservationConfirmedErrors(t *testing.T) {
	recorded := domain.Observation{ProductKey: "7891234", ProductName: "Dipirona 1g", Competitor: "Raia"}

	tests := []struct {
		name       string
		msg        messages.ObservationConfirmed
		state      status.State
		clearsForm bool
	}{
		{
			name:       "persistence failure keeps observation",
			msg:        messages.ObservationConfirmed{Observation: recorded, Err: fmt.Errorf("%w: disk full", domain.ErrPersistence)},
			state:      status.StateWarning,
			clearsForm: true,
		},
		{
			name:  "duplicate",
			msg:   messages.ObservationConfirmed{Err: domain.ErrDuplicateProduct},
			state: status.StateError,
		},
		{
			name:  "validation",
			msg:   messages.ObservationConfirmed{Err: fmt.Errorf("%w: price", domain.ErrValidation)},
			state: status.StateError,
		},
		{
			name:  "not found",
			msg:   messages.ObservationConfirmed{Err: domain.ErrProductNotFound},
			state: status.StateError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			typeText(f.view, "7891234")
			f.view.Price().SetDigits("500")

			f.view.Update(tt.msg)

			assert.Equal(t, tt.state, f.view.Status().State())
			if tt.clearsForm {
				assert.Empty(t, f.view.Query())
				assert.True(t, f.view.Price().Empty())
			} else {
				assert.Equal(t, "7891234", f.view.Query())
				assert.False(t, f.view.Price().Empty())
			}
		})
	}
}

func TestView_BackCancelsAndReturnsToMenu(t *testing.T) {
	f := newFixture()
	typeText(f.view, "78")

	cmd := press(f.view, tea.KeyEsc)

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
	assert.Contains(t, f.suggestions.cancelled, domain.FieldEAN)
}

func TestView_ErrorOccurred(t *testing.T) {
	f := newFixture()

	f.view.Update(messages.ErrorOccurred{Err: errors.New("catalog offline")})

	assert.Equal(t, status.StateError, f.view.Status().State())
	assert.Equal(t, "catalog offline", f.view.Status().Message())
}

func TestView_Render(t *testing.T) {
	f := newFixture("Drogasil")
	typeText(f.view, "7891234")
	press(f.view, tea.KeyEnter)

	out := f.view.View()

	assert.Contains(t, out, "Collect prices")
	assert.Contains(t, out, "EAN barcode")
	assert.Contains(t, out, "Dipirona 1g")
	assert.Contains(t, out, "Medley")
	assert.Contains(t, out, "< Drogasil >")
}

func TestView_Reset(t *testing.T) {
	f := newFixture("Drogasil")
	f.observations.list = []domain.Observation{{ProductKey: "1"}}
	typeText(f.view, "7891234")
	press(f.view, tea.KeyEnter)

	f.view.Reset()

	assert.Empty(t, f.view.Query())
	assert.Nil(t, f.view.Product())
	assert.Equal(t, FocusQuery, f.view.Focus())
	assert.Equal(t, 1, f.view.Status().Count())
}

func TestView_WindowSize(t *testing.T) {
	view := NewView(nil, nil, Services{}, domain.FieldEAN)

	view.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.NotEqual(t, "Initialising...", view.View())
}
