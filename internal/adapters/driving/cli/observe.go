package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

var (
	observeField     string
	observeStore     string
	observePrice     string
	observeLatitude  float64
	observeLongitude float64
	observeListJSON  bool
	observeResetYes  bool
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Record and manage price observations",
}

var observeAddCmd = &cobra.Command{
	Use:   "add [query]",
	Short: "Record a price for the product matching the query",
	Long: `Resolves the query to a product and records the price seen at a store.

The price is read as a stream of digits in minor units, so "1234",
"12,34" and "12.34" all record 12,34. Each product can be recorded once
per session.`,
	Args: cobra.ExactArgs(1),
	RunE: runObserveAdd,
}

var observeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List observations of the current session",
	Args:  cobra.NoArgs,
	RunE:  runObserveList,
}

var observeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all observations and start a new session",
	Args:  cobra.NoArgs,
	RunE:  runObserveReset,
}

func init() {
	observeAddCmd.Flags().StringVarP(&observeField, "field", "f", "", "search field (ean, description, brand, id)")
	observeAddCmd.Flags().StringVarP(&observeStore, "store", "s", "", "store where the price was seen")
	observeAddCmd.Flags().StringVarP(&observePrice, "price", "p", "", "price digits, e.g. 1234 for 12,34")
	observeAddCmd.Flags().Float64Var(&observeLatitude, "lat", 0, "latitude overriding the session location")
	observeAddCmd.Flags().Float64Var(&observeLongitude, "lon", 0, "longitude overriding the session location")
	_ = observeAddCmd.MarkFlagRequired("store")
	_ = observeAddCmd.MarkFlagRequired("price")

	observeListCmd.Flags().BoolVar(&observeListJSON, "json", false, "output observations as JSON")
	observeResetCmd.Flags().BoolVarP(&observeResetYes, "yes", "y", false, "skip the confirmation prompt")

	observeCmd.AddCommand(observeAddCmd)
	observeCmd.AddCommand(observeListCmd)
	observeCmd.AddCommand(observeResetCmd)
	rootCmd.AddCommand(observeCmd)
}

func runObserveAdd(cmd *cobra.Command, args []string) error {
	field, err := parseFieldFlag(observeField)
	if err != nil {
		return err
	}
	if services.Observations == nil {
		return errors.New("observation service not configured")
	}
	ctx := commandContext(cmd)
	if err := ensureCatalog(ctx); err != nil {
		return err
	}

	req := domain.ConfirmRequest{
		Field:      field,
		Query:      args[0],
		Competitor: observeStore,
		RawPrice:   observePrice,
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		req.Location = &domain.Location{Latitude: observeLatitude, Longitude: observeLongitude}
	}

	obs, err := services.Observations.Confirm(ctx, req)
	if err != nil && obs.ProductKey == "" {
		return describeConfirmError(err)
	}

	cmd.Printf("Recorded %s at %s for %s\n", obs.ProductName, obs.Competitor, formatPrice(obs.PriceMinor))
	if err != nil {
		return fmt.Errorf("observation kept in memory only: %w", err)
	}
	return nil
}

func describeConfirmError(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("invalid observation: %w", err)
	case errors.Is(err, domain.ErrProductNotFound):
		return fmt.Errorf("no product matches the query: %w", err)
	case errors.Is(err, domain.ErrDuplicateProduct):
		return fmt.Errorf("product already recorded in this session: %w", err)
	default:
		return fmt.Errorf("failed to record observation: %w", err)
	}
}

func formatPrice(minor int64) string {
	if services != nil && services.Prices != nil {
		return services.Prices.FormatCurrency(minor)
	}
	return fmt.Sprintf("%d", minor)
}

type observationJSON struct {
	Competitor  string           `json:"competitor"`
	ProductKey  string           `json:"product_key"`
	ProductName string           `json:"product_name"`
	Brand       string           `json:"brand,omitempty"`
	Price       string           `json:"price"`
	Currency    string           `json:"currency,omitempty"`
	PriceMinor  int64            `json:"price_minor"`
	Location    *domain.Location `json:"location,omitempty"`
	RecordedAt  string           `json:"recorded_at"`
}

func runObserveList(cmd *cobra.Command, _ []string) error {
	if services.Observations == nil {
		return errors.New("observation service not configured")
	}
	list := services.Observations.List()

	if observeListJSON {
		out := make([]observationJSON, 0, len(list))
		for _, o := range list {
			price, code := fmt.Sprintf("%d", o.PriceMinor), ""
			if services.Prices != nil {
				price = services.Prices.Canonical(o.PriceMinor)
				code = services.Prices.Currency()
			}
			out = append(out, observationJSON{
				Competitor:  o.Competitor,
				ProductKey:  o.ProductKey,
				ProductName: o.ProductName,
				Brand:       o.Brand,
				Price:       price,
				Currency:    code,
				PriceMinor:  o.PriceMinor,
				Location:    o.Location,
				RecordedAt:  o.RecordedAt.Format(time.RFC3339),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal observations: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(list) == 0 {
		cmd.Println("No observations recorded.")
		return nil
	}

	session := services.Observations.Session()
	if session.ID != "" {
		cmd.Printf("Session %s (started %s)\n\n", session.ID, session.StartedAt.Format(time.RFC3339))
	}

	w := tabwriter.NewWriter(cmd.OutOrStderr(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tPRODUCT\tBRAND\tPRICE")
	for _, o := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Competitor, o.ProductName, o.Brand, formatPrice(o.PriceMinor))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	cmd.Printf("\n%d observations\n", len(list))
	return nil
}

func runObserveReset(cmd *cobra.Command, _ []string) error {
	if services.Observations == nil {
		return errors.New("observation service not configured")
	}

	if !observeResetYes {
		if !isTerminal(os.Stdin) {
			return errors.New("refusing to reset without --yes when stdin is not a terminal")
		}
		cmd.Printf("Clear %d observations? [y/N] ", len(services.Observations.List()))
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := services.Observations.Reset(commandContext(cmd)); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println("Observations cleared.")
	return nil
}
