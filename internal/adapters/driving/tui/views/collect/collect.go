// Package collect provides the price collection view for the TUI.
package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
)

// Focus identifies the input receiving keystrokes.
type Focus int

const (
	FocusQuery Focus = iota
	FocusStore
	FocusPrice
)

// Services are the driving ports the view calls.
type Services struct {
	Suggestions  driving.SuggestionService
	Resolver     driving.ResolverService
	Observations driving.ObservationService
	Prices       driving.PriceFormatter
}

// View is the collection screen: a query input with debounced suggestions,
// a store selector and a price input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	query     *input.Field
	storeIn   *input.Field
	price     *input.Price
	list      *list.Suggestions
	statusbar *status.Bar
	services  Services
	ctx       context.Context

	field   domain.SearchField
	stores  []string
	store   int
	focus   Focus
	product *domain.ProductRecord

	// pending holds the latest delivered suggestion set.
	pending   chan domain.SuggestionSet
	listening bool

	width  int
	height int
	ready  bool
}

// NewView creates a collection view starting on the given search field.
func NewView(s *styles.Styles, km *keymap.KeyMap, services Services, field domain.SearchField) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if !field.IsValid() {
		field = domain.FieldEAN
	}

	v := &View{
		styles:    s,
		keymap:    km,
		query:     input.NewField(s, field.Description(), "start typing..."),
		storeIn:   input.NewField(s, "Store", "store name"),
		price:     input.NewPrice(s, services.Prices, "Price"),
		list:      list.NewSuggestions(s),
		statusbar: status.NewBar(s, km),
		services:  services,
		ctx:       context.Background(),
		field:     field,
		pending:   make(chan domain.SuggestionSet, 1),
		width:     80,
		height:    24,
	}
	if services.Observations != nil {
		v.stores = services.Observations.Stores()
	}
	v.statusbar.SetHints(km.CollectHelp())
	v.query.Focus()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the query and starts listening for suggestions.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.query.Init(), v.listen())
}

// listen waits for the next delivered suggestion set.
// At most one listener is outstanding at a time.
func (v *View) listen() tea.Cmd {
	if v.listening {
		return nil
	}
	v.listening = true
	pending, ctx := v.pending, v.ctx
	return func() tea.Msg {
		select {
		case set := <-pending:
			return messages.SuggestionsReady{Set: set}
		case <-ctx.Done():
			return nil
		}
	}
}

// deliver keeps only the newest set in the pending slot.
// It is called from the debounce timer goroutine.
func (v *View) deliver(set domain.SuggestionSet) {
	for {
		select {
		case v.pending <- set:
			return
		default:
			select {
			case <-v.pending:
			default:
			}
		}
	}
}

// Update handles messages for the collection view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SuggestionsReady:
		v.listening = false
		// Drop sets made stale by a later keystroke or field change.
		if msg.Set.Field == v.field && msg.Set.Query == v.query.Value() {
			v.list.SetItems(msg.Set.Suggestions)
		}
		return v, v.listen()

	case messages.ObservationConfirmed:
		v.handleConfirmed(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		v.services.Suggestions.Cancel(v.field)
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.NextField):
		v.SetField(v.field.Next())
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.NextInput):
		v.setFocus((v.focus + 1) % 3)
		return v, nil
	}

	switch v.focus {
	case FocusQuery:
		return v.handleQueryKey(msg)
	case FocusStore:
		return v.handleStoreKey(msg)
	case FocusPrice:
		if keymap.Matches(msg.String(), v.keymap.Confirm) {
			return v, v.confirm()
		}
		v.price, _ = v.price.Update(msg)
	}
	return v, nil
}

func (v *View) handleQueryKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Confirm):
		if item, ok := v.list.SelectedItem(); ok {
			v.query.SetValue(item)
			v.services.Suggestions.Cancel(v.field)
			v.list.Clear()
		}
		if v.resolve() {
			v.setFocus(FocusStore)
		}
		return v, nil
	}

	before := v.query.Value()
	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	if v.query.Value() != before {
		v.product = nil
		v.requestSuggestions()
	}
	return v, cmd
}

func (v *View) handleStoreKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Confirm) {
		v.setFocus(FocusPrice)
		return v, nil
	}

	if len(v.stores) == 0 {
		var cmd tea.Cmd
		v.storeIn, cmd = v.storeIn.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.PrevStore), keymap.Matches(msg.String(), v.keymap.Up):
		v.store = (v.store + len(v.stores) - 1) % len(v.stores)
	case keymap.Matches(msg.String(), v.keymap.NextStore), keymap.Matches(msg.String(), v.keymap.Down):
		v.store = (v.store + 1) % len(v.stores)
	}
	return v, nil
}

func (v *View) requestSuggestions() {
	query := v.query.Value()
	if strings.TrimSpace(query) == "" {
		v.services.Suggestions.Cancel(v.field)
		v.list.Clear()
		return
	}
	v.services.Suggestions.Request(v.field, query, v.deliver)
}

// resolve looks up the product for the current query.
func (v *View) resolve() bool {
	v.product = nil
	query := strings.TrimSpace(v.query.Value())
	if query == "" {
		return false
	}
	record, ok := v.services.Resolver.Resolve(v.field, query)
	if !ok {
		v.statusbar.Set(status.StateWarning, fmt.Sprintf("No product matches %s %q", v.field, query))
		return false
	}
	v.product = &record
	v.statusbar.Clear()
	return true
}

func (v *View) confirm() tea.Cmd {
	req := domain.ConfirmRequest{
		Field:      v.field,
		Query:      v.query.Value(),
		Competitor: v.Store(),
		RawPrice:   v.price.Digits(),
	}
	v.statusbar.Set(status.StateWorking, "Saving...")

	observations, ctx := v.services.Observations, v.ctx
	return func() tea.Msg {
		obs, err := observations.Confirm(ctx, req)
		return messages.ObservationConfirmed{Observation: obs, Err: err}
	}
}

func (v *View) handleConfirmed(msg messages.ObservationConfirmed) {
	recorded := msg.Observation.ProductKey != ""

	switch {
	case msg.Err == nil:
		v.statusbar.Set(status.StateSaved, v.savedMessage(msg.Observation))
	case recorded && errors.Is(msg.Err, domain.ErrPersistence):
		v.statusbar.Set(status.StateWarning, "Kept in memory only: "+msg.Err.Error())
	case errors.Is(msg.Err, domain.ErrDuplicateProduct):
		v.statusbar.Set(status.StateError, "product already recorded in this session")
		return
	default:
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return
	}

	v.statusbar.SetCount(len(v.services.Observations.List()))
	v.query.Reset()
	v.price.Reset()
	v.list.Clear()
	v.product = nil
	v.setFocus(FocusQuery)
}

func (v *View) savedMessage(obs domain.Observation) string {
	price := fmt.Sprintf("%d", obs.PriceMinor)
	if v.services.Prices != nil {
		price = v.services.Prices.FormatCurrency(obs.PriceMinor)
	}
	return fmt.Sprintf("Saved %s at %s for %s", obs.ProductName, obs.Competitor, price)
}

func (v *View) setFocus(f Focus) {
	v.focus = f
	v.query.Blur()
	v.storeIn.Blur()
	v.price.Blur()
	switch f {
	case FocusQuery:
		v.query.Focus()
	case FocusStore:
		if len(v.stores) == 0 {
			v.storeIn.Focus()
		}
	case FocusPrice:
		v.price.Focus()
	}
}

// SetField switches the search field and re-evaluates the current query.
func (v *View) SetField(field domain.SearchField) {
	v.services.Suggestions.Cancel(v.field)
	v.field = field
	v.query.SetLabel(field.Description())
	v.list.Clear()
	v.product = nil
	v.requestSuggestions()
}

// View renders the collection view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		v.styles.Title.Render("Collect prices"), "  ", v.styles.FieldTag.Render(v.field.Description()))
	sections = append(sections, header, "", v.query.View())

	if v.product != nil {
		line := v.styles.Success.Render(v.product.DisplayName())
		if brand := strings.TrimSpace(v.product.Brand); brand != "" {
			line += v.styles.Muted.Render("  " + brand)
		}
		sections = append(sections, "  "+line)
	}
	if v.focus == FocusQuery {
		sections = append(sections, "", v.list.View())
	}

	sections = append(sections, "", v.storeView(), v.price.View())
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) storeView() string {
	if len(v.stores) == 0 {
		return v.storeIn.View()
	}
	label := v.styles.Label.Render("Store")
	if v.focus == FocusStore {
		label = v.styles.FocusedLabel.Render("Store")
	}
	return label + v.styles.Normal.Render("< "+v.stores[v.store]+" >")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.query.SetWidth(width)
	v.storeIn.SetWidth(width)
	v.list.SetDimensions(width, height-14)
	v.statusbar.SetWidth(width)
}

// Reset clears the inputs and returns focus to the query.
func (v *View) Reset() {
	v.query.Reset()
	v.storeIn.Reset()
	v.price.Reset()
	v.list.Clear()
	v.product = nil
	v.statusbar.Clear()
	if v.services.Observations != nil {
		v.stores = v.services.Observations.Stores()
		v.statusbar.SetCount(len(v.services.Observations.List()))
	}
	if v.store >= len(v.stores) {
		v.store = 0
	}
	v.setFocus(FocusQuery)
}

// Field returns the active search field.
func (v *View) Field() domain.SearchField {
	return v.field
}

// Focus returns the focused input.
func (v *View) Focus() Focus {
	return v.focus
}

// Query returns the query text.
func (v *View) Query() string {
	return v.query.Value()
}

// Store returns the selected store name.
func (v *View) Store() string {
	if len(v.stores) == 0 {
		return v.storeIn.Value()
	}
	return v.stores[v.store]
}

// Price returns the price input.
func (v *View) Price() *input.Price {
	return v.price
}

// Suggestions returns the displayed suggestions.
func (v *View) Suggestions() []string {
	return v.list.Items()
}

// Product returns the resolved product, if any.
func (v *View) Product() *domain.ProductRecord {
	return v.product
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
