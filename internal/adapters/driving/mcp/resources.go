package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pricecollect resources.
	uriScheme = "pricecollect://"

	catalogStatsURI = uriScheme + "catalog/stats"
	exportTextURI   = uriScheme + "observations/export"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Catalog != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         catalogStatsURI,
			Name:        "catalog-stats",
			Description: "Statistics of the catalog generation being served",
			MIMEType:    "application/json",
		}, s.handleCatalogStatsResource)
	}

	if s.ports.Export != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         exportTextURI,
			Name:        "observations-export",
			Description: "Observation list as semicolon separated text",
			MIMEType:    "text/plain",
		}, s.handleExportTextResource)
	}
}

// handleCatalogStatsResource returns the current catalog statistics.
func (s *Server) handleCatalogStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Catalog.Stats()

	info := struct {
		Generation   uint64 `json:"generation"`
		Source       string `json:"source,omitempty"`
		Records      int    `json:"records"`
		Skipped      int    `json:"skipped"`
		Descriptions int    `json:"descriptions"`
		Brands       int    `json:"brands"`
		EANs         int    `json:"eans"`
		IDs          int    `json:"ids"`
		LastError    string `json:"last_error,omitempty"`
	}{
		Generation:   stats.Generation,
		Source:       stats.Source,
		Records:      stats.Records,
		Skipped:      stats.Skipped,
		Descriptions: stats.Descriptions,
		Brands:       stats.Brands,
		EANs:         stats.EANs,
		IDs:          stats.IDs,
		LastError:    stats.LastError,
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling catalog stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleExportTextResource returns the delimited text export.
func (s *Server) handleExportTextResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     s.ports.Export.Text(),
		}},
	}, nil
}
