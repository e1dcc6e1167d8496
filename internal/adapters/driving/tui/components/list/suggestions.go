// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
)

// Suggestions displays typeahead suggestions with a selection cursor.
// Nothing is selected until the user moves into the list.
type Suggestions struct {
	items    []string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSuggestions creates a new suggestion list component.
func NewSuggestions(s *styles.Styles) *Suggestions {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Suggestions{
		selected: -1,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// View renders the suggestion list.
func (l *Suggestions) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No suggestions")
	}

	visible := l.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	maxLen := l.width - 4
	if maxLen < 10 {
		maxLen = 10
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		item := l.items[i]
		if len([]rune(item)) > maxLen {
			item = string([]rune(item)[:maxLen-3]) + "..."
		}
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+item))
		} else {
			lines = append(lines, l.styles.Normal.Render("  "+item))
		}
	}
	if hidden := len(l.items) - end; hidden > 0 {
		lines = append(lines, l.styles.Muted.Render(fmt.Sprintf("  ... %d more", hidden)))
	}

	return strings.Join(lines, "\n")
}

// SetItems replaces the suggestions and clears the selection.
func (l *Suggestions) SetItems(items []string) {
	l.items = items
	l.selected = -1
}

// Items returns the current suggestions.
func (l *Suggestions) Items() []string {
	return l.items
}

// Clear removes all suggestions.
func (l *Suggestions) Clear() {
	l.SetItems(nil)
}

// Selected returns the index of the selected suggestion, or -1.
func (l *Suggestions) Selected() int {
	return l.selected
}

// SelectedItem returns the selected suggestion.
func (l *Suggestions) SelectedItem() (string, bool) {
	if l.selected < 0 || l.selected >= len(l.items) {
		return "", false
	}
	return l.items[l.selected], true
}

// MoveUp moves selection up. Moving above the first item clears the selection.
func (l *Suggestions) MoveUp() {
	if l.selected >= 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *Suggestions) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *Suggestions) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of suggestions.
func (l *Suggestions) Count() int {
	return len(l.items)
}
