package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// HealthPath serves a JSON health report next to the MCP endpoint.
const HealthPath = "/healthz"

const shutdownTimeout = 5 * time.Second

// Server exposes the collection workflow as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers tools for the ports that are set. Optional ports that
// are nil simply leave their tools out.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "pricecollect", Version: Version},
		&mcp.ServerOptions{Instructions: s.instructions()},
	)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells the client the order the tools are meant to be used in.
func (s *Server) instructions() string {
	steps := []string{
		"Record shelf prices for catalog products.",
		"Use suggest_products while the barcode, description or brand is incomplete,",
		"resolve_product to check a finished query,",
		"then confirm_observation with the store and the price as typed (digits are cents).",
		"A product can be recorded once per session; list_observations shows what is recorded.",
	}
	if s.ports.Export != nil {
		steps = append(steps, "export_observations writes the session as a semicolon separated file.")
	}
	return strings.Join(steps, " ")
}

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves streamable HTTP on every path except HealthPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(HealthPath, s.handleHealth)
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	return mux
}

// HealthReport is the body served at HealthPath.
type HealthReport struct {
	Status            string `json:"status"`
	CatalogGeneration uint64 `json:"catalog_generation"`
	CatalogRecords    int    `json:"catalog_records"`
	CatalogError      string `json:"catalog_error,omitempty"`
	Session           string `json:"session"`
	Observations      int    `json:"observations"`
}

// handleHealth reports "degraded" until a catalog generation is loaded or
// after the last load failed.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	report := HealthReport{
		Status:       "up",
		Session:      s.ports.Observations.Session().ID,
		Observations: len(s.ports.Observations.List()),
	}
	if s.ports.Catalog != nil {
		stats := s.ports.Catalog.Stats()
		report.CatalogGeneration = stats.Generation
		report.CatalogRecords = stats.Records
		report.CatalogError = stats.LastError
		if stats.Generation == 0 || stats.LastError != "" {
			report.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.Warn("writing health report", "error", err)
	}
}

// RunHTTP serves on addr until ctx is cancelled, then drains connections
// for up to shutdownTimeout.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp server listening", "addr", addr, "health", HealthPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp server shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
