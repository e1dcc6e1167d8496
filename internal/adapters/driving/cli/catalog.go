package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load and inspect the product catalog",
}

var catalogLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch the catalog and build the search index",
	Args:  cobra.NoArgs,
	RunE:  runCatalogLoad,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog index statistics",
	Args:  cobra.NoArgs,
	RunE:  runCatalogStats,
}

func init() {
	catalogCmd.AddCommand(catalogLoadCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogLoad(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Catalog == nil {
		return errors.New("catalog service not configured")
	}

	stats, err := services.Catalog.Load(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	cmd.Printf("Loaded %d products from %s (generation %d)\n", stats.Records, stats.Source, stats.Generation)
	if stats.Skipped > 0 {
		cmd.Printf("Skipped %d malformed rows\n", stats.Skipped)
	}
	return nil
}

func runCatalogStats(cmd *cobra.Command, _ []string) error {
	if err := ensureCatalog(commandContext(cmd)); err != nil {
		return err
	}
	printCatalogStats(cmd, services.Catalog.Stats())
	return nil
}

func printCatalogStats(cmd *cobra.Command, stats domain.CatalogStats) {
	cmd.Println("Catalog")
	cmd.Println("=======")
	cmd.Printf("  Source:       %s\n", stats.Source)
	cmd.Printf("  Generation:   %d\n", stats.Generation)
	if !stats.LoadedAt.IsZero() {
		cmd.Printf("  Loaded at:    %s\n", stats.LoadedAt.Format(time.RFC3339))
	}
	cmd.Printf("  Records:      %d\n", stats.Records)
	cmd.Printf("  Skipped:      %d\n", stats.Skipped)
	cmd.Println()
	cmd.Println("Distinct keys")
	cmd.Printf("  Descriptions: %d\n", stats.Descriptions)
	cmd.Printf("  Brands:       %d\n", stats.Brands)
	cmd.Printf("  EANs:         %d\n", stats.EANs)
	cmd.Printf("  IDs:          %d\n", stats.IDs)
	if stats.LastError != "" {
		cmd.Println()
		cmd.Printf("Last load error: %s\n", stats.LastError)
	}
}
