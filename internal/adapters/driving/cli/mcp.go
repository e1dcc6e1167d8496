package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pricecollect/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can look up
products and record observations.

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  pricecollect mcp

  # HTTP mode
  pricecollect mcp --http localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func buildMCPPorts() *mcp.Ports {
	ports := &mcp.Ports{}
	if services != nil {
		ports.Suggestions = services.Suggestions
		ports.Resolver = services.Resolver
		ports.Observations = services.Observations
		ports.Export = services.Export
		ports.Catalog = services.Catalog
		ports.Prices = services.Prices
	}
	return ports
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(buildMCPPorts())
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if err := ensureCatalog(ctx); err != nil {
		return err
	}
	startBackground(ctx)

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(ctx, mcpHTTPAddr)
	}
	return server.Run(ctx)
}
