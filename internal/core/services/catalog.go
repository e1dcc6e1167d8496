package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

var utf8BOM = []byte("\xef\xbb\xbf")

// DecodeCatalog parses a snapshot payload into product records.
// A payload that is not a JSON array fails as a whole. Rows that are not
// JSON objects are skipped and counted; odd fields inside a row are dropped
// by domain.ProductRecord.
func DecodeCatalog(payload []byte) ([]domain.ProductRecord, int, error) {
	payload = bytes.TrimPrefix(bytes.TrimSpace(payload), utf8BOM)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, 0, fmt.Errorf("%w: empty snapshot", domain.ErrCatalogUnavailable)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, 0, fmt.Errorf("%w: decode snapshot: %w", domain.ErrCatalogUnavailable, err)
	}

	records := make([]domain.ProductRecord, 0, len(rows))
	skipped := 0
	for _, raw := range rows {
		var r domain.ProductRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

// CatalogService owns the current catalog generation.
// Readers take the current index and keep using it even if a reload swaps in
// a newer one mid-call.
type CatalogService struct {
	source  driven.CatalogSource
	metrics driven.Metrics
	log     *slog.Logger
	now     func() time.Time

	current atomic.Pointer[CatalogIndex]
	nextGen atomic.Uint64

	// loadMu serializes loads so generations are swapped in fetch order.
	loadMu sync.Mutex

	mu         sync.Mutex
	sourceName string
	loadedAt   time.Time
	lastErr    string
	listeners  []func(generation uint64)
}

// NewCatalogService creates a catalog service reading from source.
// The source may be nil when records are supplied through Replace.
func NewCatalogService(source driven.CatalogSource) *CatalogService {
	c := &CatalogService{
		source:  source,
		metrics: nopMetrics{},
		log:     logger.Component("catalog"),
		now:     time.Now,
	}
	c.current.Store(BuildIndex(nil))
	return c
}

// SetMetrics sets the metrics recorder.
func (c *CatalogService) SetMetrics(m driven.Metrics) {
	c.metrics = metricsOrNop(m)
}

// OnSwap registers a callback invoked after each new generation is published.
func (c *CatalogService) OnSwap(fn func(generation uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Current returns the index being served. It is never nil.
func (c *CatalogService) Current() *CatalogIndex {
	return c.current.Load()
}

// Load fetches, decodes and swaps in a new generation.
// On failure the previous generation keeps serving and the error matches
// domain.ErrCatalogUnavailable.
func (c *CatalogService) Load(ctx context.Context) (domain.CatalogStats, error) {
	logger.Section("Catalog Load")

	if c.source == nil {
		err := fmt.Errorf("%w: no catalog source configured", domain.ErrCatalogUnavailable)
		c.recordFailure(err)
		return c.Stats(), err
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	start := c.now()
	name := c.source.Name()
	c.log.Debug("fetching snapshot", "source", name)

	payload, err := c.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			err = fmt.Errorf("%w: fetch %s: %w", domain.ErrCatalogUnavailable, name, err)
		}
		c.recordFailure(err)
		c.metrics.CatalogLoaded(false, 0, c.now().Sub(start))
		return c.Stats(), err
	}

	records, skipped, err := DecodeCatalog(payload)
	if err != nil {
		c.recordFailure(err)
		c.metrics.CatalogLoaded(false, 0, c.now().Sub(start))
		return c.Stats(), err
	}

	idx := BuildIndex(records)
	idx.skipped = skipped
	gen := c.swap(idx, name)

	took := c.now().Sub(start)
	c.metrics.CatalogLoaded(true, idx.Len(), took)
	c.log.Info("catalog loaded",
		"generation", gen, "records", idx.Len(), "skipped", skipped, "took", took)

	return c.Stats(), nil
}

// Replace builds an index from records and swaps it in.
func (c *CatalogService) Replace(records []domain.ProductRecord) uint64 {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.swap(BuildIndex(records), "inline")
}

// swap publishes a fully built index as the next generation.
func (c *CatalogService) swap(idx *CatalogIndex, sourceName string) uint64 {
	gen := c.nextGen.Add(1)
	idx.generation = gen
	c.current.Store(idx)

	c.mu.Lock()
	c.sourceName = sourceName
	c.loadedAt = c.now()
	c.lastErr = ""
	listeners := append([]func(uint64){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(gen)
	}
	return gen
}

func (c *CatalogService) recordFailure(err error) {
	c.log.Warn("catalog load failed, keeping previous generation",
		"generation", c.Current().Generation(), "error", err)
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}

// Stats describes the generation currently being served.
func (c *CatalogService) Stats() domain.CatalogStats {
	idx := c.Current()
	descriptions, brands, eans, ids := idx.Counts()

	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CatalogStats{
		Generation:   idx.Generation(),
		Source:       c.sourceName,
		Records:      idx.Len(),
		Skipped:      idx.Skipped(),
		Descriptions: descriptions,
		Brands:       brands,
		EANs:         eans,
		IDs:          ids,
		LoadedAt:     c.loadedAt,
		LastError:    c.lastErr,
	}
}

// Watch reloads the catalog every time the source reports a change, until
// ctx is cancelled. Sources that cannot watch return nil immediately.
func (c *CatalogService) Watch(ctx context.Context) error {
	ws, ok := c.source.(driven.WatchableSource)
	if !ok {
		return nil
	}

	changes, err := ws.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", ws.Name(), err)
	}

	c.log.Info("watching catalog source", "source", ws.Name())
	for range changes {
		// Failures are recorded on Stats and the previous generation stays.
		_, _ = c.Load(ctx)
	}
	return nil
}
