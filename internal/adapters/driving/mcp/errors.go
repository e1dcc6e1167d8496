// Package mcp provides an MCP (Model Context Protocol) server adapter for pricecollect.
// It lets AI assistants look up catalog products and record price observations.
package mcp

import "errors"

// Errors returned when a required port is not provided.
var (
	ErrMissingSuggestionService  = errors.New("mcp: suggestion service is required")
	ErrMissingResolverService    = errors.New("mcp: resolver service is required")
	ErrMissingObservationService = errors.New("mcp: observation service is required")
)
