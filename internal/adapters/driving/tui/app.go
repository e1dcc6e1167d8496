package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/views/collect"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui/views/observations"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView         *menu.View
	collectView      *collect.View
	observationsView *observations.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	field := domain.FieldEAN
	if ports.Settings != nil {
		if settings, err := ports.Settings.Get(); err == nil && settings.Search.DefaultField.IsValid() {
			field = settings.Search.DefaultField
		}
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s)
	if ports.Catalog != nil {
		menuView.SetCatalogStats(ports.Catalog.Stats())
	}

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		help:     help.New(),
		menuView: menuView,
		collectView: collect.NewView(s, km, collect.Services{
			Suggestions:  ports.Suggestions,
			Resolver:     ports.Resolver,
			Observations: ports.Observations,
			Prices:       ports.Prices,
		}, field),
		observationsView: observations.NewView(s, km, ports.Observations, ports.Export, ports.Prices),
		currentView:      messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.collectView.WithContext(ctx)
	a.observationsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pricecollect"),
		a.collectView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewCollect:
			a.collectView.Reset()
		case messages.ViewObservations:
			return a, a.observationsView.Init()
		case messages.ViewMenu:
			if a.ports.Catalog != nil {
				a.menuView.SetCatalogStats(a.ports.Catalog.Stats())
			}
		case messages.ViewHelp:
		}
		return a, nil

	case messages.CatalogReloadRequested:
		return a, a.reloadCatalog()

	case messages.CatalogLoaded:
		a.menuView.SetCatalogStats(msg.Stats)
		if msg.Err != nil {
			a.err = msg.Err
			logger.Warn("catalog reload failed", "error", msg.Err)
		}
		return a, nil

	case messages.SuggestionsReady, messages.ObservationConfirmed:
		// The collect view owns the suggestion listener even when hidden.
		a.collectView, cmd = a.collectView.Update(msg)
		return a, cmd

	case messages.ObservationsLoaded, messages.ExportCompleted, messages.ResetCompleted:
		a.observationsView, cmd = a.observationsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewCollect {
			a.collectView, cmd = a.collectView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) updateKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewCollect:
		a.collectView, cmd = a.collectView.Update(msg)
	case messages.ViewObservations:
		a.observationsView, cmd = a.observationsView.Update(msg)
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) || keymap.Matches(msg.String(), a.keymap.Quit) {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

func (a *App) reloadCatalog() tea.Cmd {
	if a.ports.Catalog == nil {
		return nil
	}
	catalog, ctx := a.ports.Catalog, a.ctx
	return func() tea.Msg {
		stats, err := catalog.Load(ctx)
		return messages.CatalogLoaded{Stats: stats, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewCollect:
		return a.collectView.View()
	case messages.ViewObservations:
		return a.observationsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Prices are typed as digits and fill from the cents up."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.menuView.SetDimensions(width, height)
	a.collectView.SetDimensions(width, height)
	a.observationsView.SetDimensions(width, height)
}
