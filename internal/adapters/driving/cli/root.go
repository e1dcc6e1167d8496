// Package cli provides the cobra command tree for pricecollect.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// version is set at build time.
var version = "dev"

// skipServices marks commands that run without building services.
const skipServices = "skip-services"

var (
	verbose   bool
	configDir string
)

// Services are the driving ports the commands call.
type Services struct {
	Catalog      driving.CatalogService
	Suggestions  driving.SuggestionService
	Resolver     driving.ResolverService
	Observations driving.ObservationService
	Export       driving.ExportService
	Prices       driving.PriceFormatter
	Settings     driving.SettingsService

	// Background runs long-lived work such as the catalog watcher and the
	// metrics endpoint. Only interactive and server commands start it.
	Background func(ctx context.Context) error
}

// Initializer builds the services for a config directory. The returned
// cleanup is called after the command finishes.
type Initializer func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	services    *Services
	initializer Initializer
	cleanup     func()
)

var rootCmd = &cobra.Command{
	Use:   "pricecollect",
	Short: "Collect competitor prices against a product catalog",
	Long: `pricecollect records competitor shelf prices for products in a reference
catalog. Products are found by barcode, description, brand or ID with
typeahead suggestions, and the collected list can be exported as delimited
text or uploaded as JSON.

Run without arguments in a terminal to start the interactive UI.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isTerminal(os.Stdout) && isTerminal(os.Stdin) {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.pricecollect, :memory: for a throwaway config)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetInitializer registers the function that builds services on demand.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipServices] == "true" || services != nil {
		return nil
	}
	if initializer == nil {
		return errors.New("services not configured")
	}

	built, done, err := initializer(commandContext(cmd), configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	services = built
	cleanup = done
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// ensureCatalog loads the catalog unless a generation is already served.
func ensureCatalog(ctx context.Context) error {
	if services == nil || services.Catalog == nil {
		return errors.New("catalog service not configured")
	}
	if services.Catalog.Stats().Generation > 0 {
		return nil
	}
	if _, err := services.Catalog.Load(ctx); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	return nil
}

// startBackground runs the background work until ctx is cancelled.
// Failures are logged; they do not stop the foreground command.
func startBackground(ctx context.Context) {
	if services == nil || services.Background == nil {
		return
	}
	go func() {
		if err := services.Background(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("background tasks stopped", "error", err)
		}
	}()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
