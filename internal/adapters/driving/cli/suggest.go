package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

var (
	suggestField string
	suggestJSON  bool
	resolveField string
	resolveJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "List typeahead suggestions for a query",
	Long: `Evaluates a query against one catalog field and prints the suggestions
the interactive UI would offer.

Fields: ean (prefix match), description and brand (every word must appear),
id (prefix match).`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Resolve a query to a single product",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestField, "field", "f", "", "search field (ean, description, brand, id)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	resolveCmd.Flags().StringVarP(&resolveField, "field", "f", "", "search field (ean, description, brand, id)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output the product as JSON")
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(resolveCmd)
}

// parseFieldFlag returns the field named by the flag, falling back to the
// configured default and then to EAN.
func parseFieldFlag(value string) (domain.SearchField, error) {
	if value != "" {
		return domain.ParseSearchField(value)
	}
	if services != nil && services.Settings != nil {
		if settings, err := services.Settings.Get(); err == nil && settings.Search.DefaultField.IsValid() {
			return settings.Search.DefaultField, nil
		}
	}
	return domain.FieldEAN, nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	field, err := parseFieldFlag(suggestField)
	if err != nil {
		return err
	}
	if services.Suggestions == nil {
		return errors.New("suggestion service not configured")
	}
	if err := ensureCatalog(commandContext(cmd)); err != nil {
		return err
	}

	set := services.Suggestions.Suggest(field, args[0])

	if suggestJSON {
		data, err := json.MarshalIndent(set.Suggestions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal suggestions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(set.Suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, s := range set.Suggestions {
		cmd.Println(s)
	}
	return nil
}

type productJSON struct {
	Key         string `json:"key"`
	ID          string `json:"id,omitempty"`
	EAN         string `json:"ean,omitempty"`
	Description string `json:"description"`
	Brand       string `json:"brand,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	field, err := parseFieldFlag(resolveField)
	if err != nil {
		return err
	}
	if services.Resolver == nil {
		return errors.New("resolver service not configured")
	}
	if err := ensureCatalog(commandContext(cmd)); err != nil {
		return err
	}

	product, ok := services.Resolver.Resolve(field, args[0])
	if !ok {
		cmd.Println("No product found.")
		return nil
	}

	if resolveJSON {
		data, err := json.MarshalIndent(productJSON{
			Key:         product.Key(),
			ID:          product.IDString(),
			EAN:         product.EAN,
			Description: product.DisplayName(),
			Brand:       product.Brand,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal product: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s\n", product.DisplayName())
	if product.Brand != "" {
		cmd.Printf("  Brand: %s\n", product.Brand)
	}
	if product.EAN != "" {
		cmd.Printf("  EAN:   %s\n", product.EAN)
	}
	if id := product.IDString(); id != "" {
		cmd.Printf("  ID:    %s\n", id)
	}
	return nil
}
