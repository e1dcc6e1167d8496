package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// QueryInput is the input schema for the suggest and resolve tools.
type QueryInput struct {
	Field string `json:"field,omitempty" jsonschema:"search field: ean, description, brand or id (default ean)"`
	Query string `json:"query" jsonschema:"the text typed so far"`
}

// SuggestOutput is the output schema for the suggest_products tool.
type SuggestOutput struct {
	Field       string   `json:"field"`
	Query       string   `json:"query"`
	Generation  uint64   `json:"generation"`
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// ProductOutput represents a catalog product.
type ProductOutput struct {
	Key         string `json:"key"`
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Brand       string `json:"brand,omitempty"`
	EAN         string `json:"ean,omitempty"`
}

// ResolveOutput is the output schema for the resolve_product tool.
type ResolveOutput struct {
	Found   bool           `json:"found"`
	Product *ProductOutput `json:"product,omitempty"`
}

// ConfirmInput is the input schema for the confirm_observation tool.
type ConfirmInput struct {
	Field     string   `json:"field,omitempty" jsonschema:"search field the query targets (default ean)"`
	Query     string   `json:"query" jsonschema:"value identifying the product"`
	Store     string   `json:"store" jsonschema:"competitor store where the price was seen"`
	Price     string   `json:"price" jsonschema:"price digits as typed, read as minor units (500 means 5.00)"`
	Latitude  *float64 `json:"latitude,omitempty" jsonschema:"optional latitude overriding the session location"`
	Longitude *float64 `json:"longitude,omitempty" jsonschema:"optional longitude overriding the session location"`
}

// ObservationOutput represents a recorded observation.
type ObservationOutput struct {
	Store       string `json:"store"`
	ProductKey  string `json:"product_key"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand,omitempty"`
	PriceMinor  int64  `json:"price_minor"`
	Price       string `json:"price"`
	Currency    string `json:"currency,omitempty"`
	Location    string `json:"location,omitempty"`
	RecordedAt  string `json:"recorded_at"`
}

// ListInput is the (empty) input schema for the list_observations tool.
type ListInput struct{}

// ListOutput is the output schema for the list_observations tool.
type ListOutput struct {
	Session      string              `json:"session"`
	Observations []ObservationOutput `json:"observations"`
	Count        int                 `json:"count"`
}

// ExportInput is the input schema for the export_observations tool.
type ExportInput struct {
	TextOnly bool `json:"text_only,omitempty" jsonschema:"return the delimited text without writing a file"`
}

// ExportOutput is the output schema for the export_observations tool.
type ExportOutput struct {
	FileName    string `json:"file_name,omitempty"`
	Location    string `json:"location,omitempty"`
	Rows        int    `json:"rows"`
	Uploaded    bool   `json:"uploaded"`
	UploadName  string `json:"upload_name,omitempty"`
	UploadError string `json:"upload_error,omitempty"`
	Text        string `json:"text,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest_products",
		Description: "Suggest catalog values matching a partial query on one field",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_product",
		Description: "Resolve a completed query to a single catalog product",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "confirm_observation",
		Description: "Record the price of a product at a competitor store",
	}, s.handleConfirm)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_observations",
		Description: "List the observations recorded in the current session",
	}, s.handleList)

	if s.ports.Export != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "export_observations",
			Description: "Export the observation list as semicolon separated text",
		}, s.handleExport)
	}
}

func parseField(name string) (domain.SearchField, error) {
	if name == "" {
		return domain.FieldEAN, nil
	}
	return domain.ParseSearchField(name)
}

// handleSuggest handles the suggest_products tool invocation.
func (s *Server) handleSuggest(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	field, err := parseField(input.Field)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	set := s.ports.Suggestions.Suggest(field, input.Query)
	suggestions := set.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return nil, SuggestOutput{
		Field:       set.Field.String(),
		Query:       set.Query,
		Generation:  set.Generation,
		Suggestions: suggestions,
		Count:       len(suggestions),
	}, nil
}

// handleResolve handles the resolve_product tool invocation.
func (s *Server) handleResolve(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	field, err := parseField(input.Field)
	if err != nil {
		return nil, ResolveOutput{}, err
	}

	record, ok := s.ports.Resolver.Resolve(field, input.Query)
	if !ok {
		return nil, ResolveOutput{Found: false}, nil
	}

	return nil, ResolveOutput{
		Found: true,
		Product: &ProductOutput{
			Key:         record.Key(),
			ID:          record.IDString(),
			Description: record.DisplayName(),
			Brand:       record.Brand,
			EAN:         record.EAN,
		},
	}, nil
}

// handleConfirm handles the confirm_observation tool invocation.
// Validation, unknown product and duplicate failures come back as tool errors.
func (s *Server) handleConfirm(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConfirmInput,
) (*mcp.CallToolResult, ObservationOutput, error) {
	field, err := parseField(input.Field)
	if err != nil {
		return nil, ObservationOutput{}, err
	}

	req := domain.ConfirmRequest{
		Field:      field,
		Query:      input.Query,
		Competitor: input.Store,
		RawPrice:   input.Price,
	}
	if input.Latitude != nil && input.Longitude != nil {
		req.Location = &domain.Location{Latitude: *input.Latitude, Longitude: *input.Longitude}
	}

	obs, err := s.ports.Observations.Confirm(ctx, req)
	if err != nil && obs.ProductKey == "" {
		return nil, ObservationOutput{}, err
	}
	// A persistence failure still recorded the observation in memory.
	return nil, s.observationOutput(obs), err
}

// handleList handles the list_observations tool invocation.
func (s *Server) handleList(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	list := s.ports.Observations.List()
	output := ListOutput{
		Session:      s.ports.Observations.Session().ID,
		Observations: make([]ObservationOutput, len(list)),
		Count:        len(list),
	}
	for i := range list {
		output.Observations[i] = s.observationOutput(list[i])
	}
	return nil, output, nil
}

// handleExport handles the export_observations tool invocation.
func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	if input.TextOnly {
		return nil, ExportOutput{
			Rows: len(s.ports.Observations.List()),
			Text: s.ports.Export.Text(),
		}, nil
	}

	result, err := s.ports.Export.Export(ctx)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	output := ExportOutput{
		FileName:   result.FileName,
		Location:   result.Location,
		Rows:       result.Rows,
		Uploaded:   result.Uploaded,
		UploadName: result.UploadName,
	}
	if result.UploadErr != nil {
		output.UploadError = result.UploadErr.Error()
	}
	return nil, output, nil
}

func (s *Server) observationOutput(obs domain.Observation) ObservationOutput {
	out := ObservationOutput{
		Store:       obs.Competitor,
		ProductKey:  obs.ProductKey,
		ProductName: obs.ProductName,
		Brand:       obs.Brand,
		PriceMinor:  obs.PriceMinor,
		RecordedAt:  obs.RecordedAt.UTC().Format(time.RFC3339),
	}
	if s.ports.Prices != nil {
		out.Price = s.ports.Prices.FormatCurrency(obs.PriceMinor)
		out.Currency = s.ports.Prices.Currency()
	}
	if obs.Location != nil {
		out.Location = obs.Location.String()
	}
	return out
}
