package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestions_Empty(t *testing.T) {
	l := NewSuggestions(nil)

	assert.Equal(t, 0, l.Count())
	assert.Equal(t, -1, l.Selected())
	assert.Contains(t, l.View(), "No suggestions")
	_, ok := l.SelectedItem()
	assert.False(t, ok)
}

func TestSuggestions_Navigation(t *testing.T) {
	l := NewSuggestions(nil)
	l.SetItems([]string{"Paracetamol 500mg", "Paracetamol 750mg"})

	l.MoveDown()
	item, ok := l.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, "Paracetamol 500mg", item)

	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 1, l.Selected())

	l.MoveUp()
	l.MoveUp()
	assert.Equal(t, -1, l.Selected())
	l.MoveUp()
	assert.Equal(t, -1, l.Selected())
}

func TestSuggestions_SetItemsClearsSelection(t *testing.T) {
	l := NewSuggestions(nil)
	l.SetItems([]string{"a", "b"})
	l.MoveDown()

	l.SetItems([]string{"c"})
	assert.Equal(t, -1, l.Selected())

	l.Clear()
	assert.Empty(t, l.Items())
}

func TestSuggestions_ViewWindow(t *testing.T) {
	l := NewSuggestions(nil)
	l.SetDimensions(40, 2)
	l.SetItems([]string{"one", "two", "three", "four"})

	view := l.View()
	assert.Contains(t, view, "one")
	assert.Contains(t, view, "two")
	assert.NotContains(t, view, "three")
	assert.Contains(t, view, "2 more")

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	view = l.View()
	assert.Contains(t, view, "> three")
	assert.NotContains(t, view, "one")
}
