package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

var exportStdout bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the observation list",
	Long: `Writes the observation list as semicolon-delimited text to the export
directory and, when upload is enabled, uploads it as JSON.

Use --stdout to print the delimited text instead of writing a file.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "print the delimited text to stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if services.Export == nil {
		return errors.New("export service not configured")
	}

	if exportStdout {
		_, err := io.WriteString(cmd.OutOrStdout(), services.Export.Text())
		return err
	}

	result, err := services.Export.Export(commandContext(cmd))
	if errors.Is(err, domain.ErrNothingToExport) {
		cmd.Println("No observations to export.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Wrote %d rows to %s\n", result.Rows, result.Location)
	switch {
	case result.Uploaded:
		cmd.Printf("Uploaded %s\n", result.UploadName)
	case result.UploadErr != nil:
		cmd.Printf("Warning: %v\n", result.UploadErr)
	}
	return nil
}
