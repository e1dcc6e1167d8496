// Package observations provides the session observation list view.
package observations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
)

// View lists the observations recorded in the current session and offers
// export and reset.
type View struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	statusbar    *status.Bar
	observations driving.ObservationService
	export       driving.ExportService
	prices       driving.PriceFormatter
	ctx          context.Context

	items     []domain.Observation
	selected  int
	offset    int
	prompting bool

	width  int
	height int
	ready  bool
}

// NewView creates an observations view. export may be nil when exporting
// is not configured.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	observations driving.ObservationService,
	export driving.ExportService,
	prices driving.PriceFormatter,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:       s,
		keymap:       km,
		statusbar:    status.NewBar(s, km),
		observations: observations,
		export:       export,
		prices:       prices,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
	v.statusbar.SetHints(km.ObservationsHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the observation list.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.observations == nil {
		return nil
	}
	observations := v.observations
	return func() tea.Msg {
		return messages.ObservationsLoaded{Observations: observations.List()}
	}
}

// Update handles messages for the observations view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.prompting {
			return v.handlePrompt(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.ObservationsLoaded:
		v.items = msg.Observations
		if v.selected >= len(v.items) {
			v.selected = max(len(v.items)-1, 0)
		}
		v.statusbar.SetCount(len(v.items))
		return v, nil

	case messages.ExportCompleted:
		v.handleExport(msg)
		return v, nil

	case messages.ResetCompleted:
		if msg.Err != nil {
			v.statusbar.Set(status.StateError, "Reset failed: "+msg.Err.Error())
		} else {
			v.statusbar.Set(status.StateSaved, "Observations cleared")
			v.selected, v.offset = 0, 0
		}
		return v, v.load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(msg.String(), v.keymap.Down):
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case keymap.Matches(msg.String(), v.keymap.Export):
		return v, v.exportCmd()
	case keymap.Matches(msg.String(), v.keymap.Reset):
		if len(v.items) == 0 {
			v.statusbar.Set(status.StateWarning, "Nothing to clear")
			return v, nil
		}
		v.prompting = true
		v.statusbar.Set(status.StatePrompt, fmt.Sprintf("Clear %d observations?", len(v.items)))
	}
	return v, nil
}

func (v *View) handlePrompt(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Yes):
		v.prompting = false
		v.statusbar.Set(status.StateWorking, "Clearing...")
		observations, ctx := v.observations, v.ctx
		return v, func() tea.Msg {
			return messages.ResetCompleted{Err: observations.Reset(ctx)}
		}
	case keymap.Matches(msg.String(), v.keymap.No):
		v.prompting = false
		v.statusbar.Clear()
	}
	return v, nil
}

func (v *View) exportCmd() tea.Cmd {
	if v.export == nil {
		v.statusbar.Set(status.StateWarning, "Export is not configured")
		return nil
	}
	v.statusbar.Set(status.StateWorking, "Exporting...")
	export, ctx := v.export, v.ctx
	return func() tea.Msg {
		result, err := export.Export(ctx)
		return messages.ExportCompleted{Result: result, Err: err}
	}
}

func (v *View) handleExport(msg messages.ExportCompleted) {
	switch {
	case errors.Is(msg.Err, domain.ErrNothingToExport):
		v.statusbar.Set(status.StateWarning, "Nothing to export")
	case msg.Err != nil:
		v.statusbar.Set(status.StateError, "Export failed: "+msg.Err.Error())
	case msg.Result.UploadErr != nil:
		v.statusbar.Set(status.StateWarning,
			fmt.Sprintf("Wrote %s, upload failed", msg.Result.FileName))
	case msg.Result.Uploaded:
		v.statusbar.Set(status.StateSaved,
			fmt.Sprintf("Wrote %s and uploaded %s", msg.Result.FileName, msg.Result.UploadName))
	default:
		v.statusbar.Set(status.StateSaved,
			fmt.Sprintf("Wrote %d rows to %s", msg.Result.Rows, msg.Result.Location))
	}
}

// View renders the observations view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Observations"))
	if v.observations != nil {
		if id := v.observations.Session().ID; id != "" {
			b.WriteString(v.styles.Muted.Render("  session " + id))
		}
	}
	b.WriteString("\n\n")

	if len(v.items) == 0 {
		b.WriteString(v.styles.Muted.Render("No observations yet."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.renderRows())
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderRows() string {
	visible := max(v.height-6, 1)
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+visible {
		v.offset = v.selected - visible + 1
	}
	end := min(v.offset+visible, len(v.items))

	rows := make([]string, 0, end-v.offset+1)
	for i := v.offset; i < end; i++ {
		rows = append(rows, v.renderRow(i, v.items[i]))
	}
	if remaining := len(v.items) - end; remaining > 0 {
		rows = append(rows, v.styles.Muted.Render(fmt.Sprintf("  ... %d more", remaining)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (v *View) renderRow(i int, obs domain.Observation) string {
	name := obs.ProductName
	if brand := strings.TrimSpace(obs.Brand); brand != "" {
		name += " (" + brand + ")"
	}
	line := fmt.Sprintf("%-14s %-40s %s", obs.Competitor, truncate(name, 40), v.formatPrice(obs.PriceMinor))

	if i == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

func (v *View) formatPrice(minor int64) string {
	if v.prices == nil {
		return fmt.Sprintf("%d", minor)
	}
	return v.styles.Price.Render(v.prices.FormatCurrency(minor))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Items returns the loaded observations.
func (v *View) Items() []domain.Observation {
	return v.items
}

// Selected returns the selected row index.
func (v *View) Selected() int {
	return v.selected
}

// Prompting reports whether the reset prompt is open.
func (v *View) Prompting() bool {
	return v.prompting
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
