package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(styles.DefaultStyles(), "Query", "type here")

	require.NotNil(t, f)
	assert.Empty(t, f.Value())
	assert.False(t, f.Focused())
	assert.Equal(t, "Query", f.Label())
	assert.NotNil(t, f.Init())
}

func TestField_TypingRequiresFocus(t *testing.T) {
	f := NewField(nil, "Query", "")
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}

	f, _ = f.Update(msg)
	assert.Empty(t, f.Value())

	f.Focus()
	f, _ = f.Update(msg)
	assert.Equal(t, "a", f.Value())
}

func TestField_ValueAndReset(t *testing.T) {
	f := NewField(nil, "Store", "")

	f.SetValue("Drogasil")
	assert.Equal(t, "Drogasil", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestField_ViewShowsLabel(t *testing.T) {
	f := NewField(nil, "EAN", "")
	assert.Contains(t, f.View(), "EAN")

	f.SetLabel("Brand")
	assert.Contains(t, f.View(), "Brand")
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 84, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}
