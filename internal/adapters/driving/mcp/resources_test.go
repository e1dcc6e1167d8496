package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCatalogStatsResource(t *testing.T) {
	ports := requiredPorts()
	ports.Catalog = &mockCatalogService{stats: domain.CatalogStats{
		Generation: 2,
		Source:     "file:/data/catalog.json",
		Records:    4,
		Brands:     3,
	}}
	server := newTestServer(t, ports)

	result, err := server.handleCatalogStatsResource(context.Background(), readRequest(catalogStatsURI))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
	assert.Equal(t, float64(2), decoded["generation"])
	assert.Equal(t, float64(4), decoded["records"])
	assert.NotContains(t, decoded, "last_error")
}

func TestServer_handleExportTextResource(t *testing.T) {
	ports := requiredPorts()
	ports.Export = &mockExportService{text: "header\nrow"}
	server := newTestServer(t, ports)

	result, err := server.handleExportTextResource(context.Background(), readRequest(exportTextURI))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "header\nrow", result.Contents[0].Text)
	assert.Equal(t, exportTextURI, result.Contents[0].URI)
}
