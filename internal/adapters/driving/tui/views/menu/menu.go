// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// Item represents a single menu option.
type Item struct {
	Label  string
	View   messages.ViewType
	Reload bool // If true, selecting this item reloads the catalog
	Quit   bool // If true, selecting this item quits the app
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	catalog  domain.CatalogStats
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Collect prices", View: messages.ViewCollect},
			{Label: "Observations", View: messages.ViewObservations},
			{Label: "Reload catalog", Reload: true},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			item := v.items[v.selected]
			switch {
			case item.Quit:
				return v, tea.Quit
			case item.Reload:
				return v, func() tea.Msg { return messages.CatalogReloadRequested{} }
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("pricecollect"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render(v.catalogLine()))
	b.WriteString("\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + item.Label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + item.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

func (v *View) catalogLine() string {
	switch {
	case v.catalog.LastError != "":
		return "Catalog: " + v.catalog.LastError
	case v.catalog.Generation == 0:
		return "Catalog: not loaded"
	default:
		return fmt.Sprintf("Catalog: %d products (generation %d)", v.catalog.Records, v.catalog.Generation)
	}
}

// SetCatalogStats updates the catalog summary line.
func (v *View) SetCatalogStats(stats domain.CatalogStats) {
	v.catalog = stats
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
