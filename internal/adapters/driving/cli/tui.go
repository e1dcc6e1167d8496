package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/tui"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive collection UI",
	Long: `Launch the interactive terminal UI for collecting prices.

Controls:
  tab        - Cycle the search field (EAN, description, brand, ID)
  shift+tab  - Move between query, store and price
  ↑/↓        - Pick a suggestion
  ←/→        - Pick a store
  enter      - Accept / confirm
  esc        - Back
  ctrl+c     - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// buildTUIPorts maps services onto the TUI ports.
func buildTUIPorts() *tui.Ports {
	ports := &tui.Ports{}
	if services != nil {
		ports.Catalog = services.Catalog
		ports.Suggestions = services.Suggestions
		ports.Resolver = services.Resolver
		ports.Observations = services.Observations
		ports.Export = services.Export
		ports.Prices = services.Prices
		ports.Settings = services.Settings
	}
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(buildTUIPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// The UI can reload the catalog itself, so a failed first load is not fatal.
	if err := ensureCatalog(ctx); err != nil {
		logger.Warn("starting without catalog", "error", err)
	}
	startBackground(ctx)

	app.WithContext(ctx)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
