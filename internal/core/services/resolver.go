package services

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driving.ResolverService = (*Resolver)(nil)

type resolveKey struct {
	generation uint64
	field      domain.SearchField
	query      string
}

func (k resolveKey) String() string {
	return fmt.Sprintf("%d\x00%s\x00%s", k.generation, k.field, k.query)
}

type resolveEntry struct {
	record domain.ProductRecord
	found  bool
}

// ResolverStats reports cache behaviour.
type ResolverStats struct {
	Generation uint64
	Entries    int
	Hits       uint64
	Misses     uint64
}

// Resolver resolves completed queries to one product, memoizing results per
// catalog generation. The whole cache is dropped when a newer generation
// appears, so a reload never serves a record from an older snapshot.
type Resolver struct {
	catalog *CatalogService
	metrics driven.Metrics
	log     *slog.Logger
	group   singleflight.Group

	mu         sync.Mutex
	generation uint64
	cache      map[resolveKey]resolveEntry
	hits       uint64
	misses     uint64
}

// NewResolver creates a resolver over the catalog and subscribes to its swaps.
func NewResolver(catalog *CatalogService) *Resolver {
	r := &Resolver{
		catalog: catalog,
		metrics: nopMetrics{},
		log:     logger.Component("resolver"),
		cache:   make(map[resolveKey]resolveEntry),
	}
	catalog.OnSwap(r.invalidate)
	return r
}

// SetMetrics sets the metrics recorder.
func (r *Resolver) SetMetrics(m driven.Metrics) {
	r.metrics = metricsOrNop(m)
}

// Resolve returns the product a query identifies against the current generation.
func (r *Resolver) Resolve(field domain.SearchField, query string) (domain.ProductRecord, bool) {
	idx := r.catalog.Current()
	key := resolveKey{generation: idx.Generation(), field: field, query: query}

	if e, ok := r.lookup(key); ok {
		r.metrics.ResolveLookup(field.String(), true)
		return cloneRecord(&e.record), e.found
	}
	r.metrics.ResolveLookup(field.String(), false)

	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		record, found := idx.Resolve(field, query)
		e := resolveEntry{record: record, found: found}
		r.store(key, e)
		return e, nil
	})
	e := v.(resolveEntry)
	return cloneRecord(&e.record), e.found
}

func (r *Resolver) lookup(key resolveKey) (resolveEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(key.generation)
	e, ok := r.cache[key]
	if ok {
		r.hits++
	} else {
		r.misses++
	}
	return e, ok
}

func (r *Resolver) store(key resolveKey, e resolveEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(key.generation)
	// A lookup that started before a swap must not repopulate the cache.
	if key.generation != r.generation {
		return
	}
	r.cache[key] = e
}

func (r *Resolver) invalidate(generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance(generation)
}

// advance drops the cache when generation is newer than the cached one.
// Caller holds r.mu.
func (r *Resolver) advance(generation uint64) {
	if generation <= r.generation {
		return
	}
	if len(r.cache) > 0 {
		r.log.Debug("cache invalidated", "from", r.generation, "to", generation, "entries", len(r.cache))
	}
	r.generation = generation
	r.cache = make(map[resolveKey]resolveEntry)
}

// Stats returns cache counters.
func (r *Resolver) Stats() ResolverStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResolverStats{
		Generation: r.generation,
		Entries:    len(r.cache),
		Hits:       r.hits,
		Misses:     r.misses,
	}
}
