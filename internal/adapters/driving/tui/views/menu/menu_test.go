package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.Len(t, view.items, 5)
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Init())

	assert.NotNil(t, NewView(nil).styles)
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil).View())
}

func TestView_Navigation(t *testing.T) {
	view := NewView(nil)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())

	for i := 0; i < 10; i++ {
		view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	}
	assert.Equal(t, 4, view.Selected())

	for i := 0; i < 10; i++ {
		view.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, 0, view.Selected())
}

func TestView_EnterEmitsMessages(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		expected tea.Msg
	}{
		{"collect", 0, messages.ViewChanged{View: messages.ViewCollect}},
		{"observations", 1, messages.ViewChanged{View: messages.ViewObservations}},
		{"reload", 2, messages.CatalogReloadRequested{}},
		{"help", 3, messages.ViewChanged{View: messages.ViewHelp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil)
			view.selected = tt.index

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)
			assert.Equal(t, tt.expected, cmd())
		})
	}
}

func TestView_Quit(t *testing.T) {
	view := NewView(nil)
	view.selected = 4

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestView_CatalogLine(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)
	assert.Contains(t, view.View(), "Catalog: not loaded")

	view.SetCatalogStats(domain.CatalogStats{Generation: 2, Records: 1500})
	assert.Contains(t, view.View(), "1500 products (generation 2)")

	view.SetCatalogStats(domain.CatalogStats{Generation: 2, LastError: "catalog unavailable"})
	assert.Contains(t, view.View(), "catalog unavailable")
}
