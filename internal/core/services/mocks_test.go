package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

// --- Mock implementations ---

// mockCatalogSource implements driven.CatalogSource for testing.
type mockCatalogSource struct {
	mu      sync.Mutex
	payload []byte
	err     error
	calls   int
}

func (m *mockCatalogSource) Fetch(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

func (m *mockCatalogSource) Name() string {
	return "mock"
}

func (m *mockCatalogSource) set(payload string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = []byte(payload)
	m.err = err
}

// mockWatchSource implements driven.WatchableSource for testing.
type mockWatchSource struct {
	mockCatalogSource
	changes  chan struct{}
	watchErr error
}

func (m *mockWatchSource) Watch(_ context.Context) (<-chan struct{}, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.changes, nil
}

// mockKVStore implements driven.KeyValueStore for testing.
type mockKVStore struct {
	mu        sync.Mutex
	values    map[string]string
	setErr    error
	getErr    error
	removeErr error
	sets      []string
	setDelay  time.Duration
	inFlight  int
	maxFlight int
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{values: make(map[string]string)}
}

func (m *mockKVStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockKVStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	delay := m.setDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	m.sets = append(m.sets, value)
	return nil
}

func (m *mockKVStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.values, key)
	return nil
}

// mockLocator implements driven.Locator for testing.
type mockLocator struct {
	loc domain.Location
	err error
}

func (m *mockLocator) Locate(_ context.Context) (domain.Location, error) {
	return m.loc, m.err
}

// mockFileSink implements driven.FileSink for testing.
type mockFileSink struct {
	files map[string][]byte
	err   error
}

func (m *mockFileSink) Save(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = data
	return "/exports/" + name, nil
}

// mockUploader implements driven.Uploader for testing.
type mockUploader struct {
	name        string
	contentType string
	data        []byte
	err         error
}

func (m *mockUploader) Upload(_ context.Context, name, contentType string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.name, m.contentType, m.data = name, contentType, data
	return nil
}

// mockMetrics implements driven.Metrics for testing.
type mockMetrics struct {
	mu          sync.Mutex
	loads       []bool
	suggestions map[string]int
	lookups     map[bool]int
	outcomes    map[string]int
	persists    []bool
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		suggestions: make(map[string]int),
		lookups:     make(map[bool]int),
		outcomes:    make(map[string]int),
	}
}

func (m *mockMetrics) CatalogLoaded(success bool, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, success)
}

func (m *mockMetrics) SuggestionServed(field string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions[field]++
}

func (m *mockMetrics) ResolveLookup(_ string, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[cacheHit]++
}

func (m *mockMetrics) ObservationConfirmed(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *mockMetrics) PersistCompleted(success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persists = append(m.persists, success)
}

// mockResolver implements driving.ResolverService for testing.
type mockResolver struct {
	records map[string]domain.ProductRecord
}

func (m *mockResolver) Resolve(_ domain.SearchField, query string) (domain.ProductRecord, bool) {
	r, ok := m.records[query]
	return r, ok
}

// manualClock implements Clock. Timers fire only when Advance passes them.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// fireAll runs every timer ever created, including stopped ones.
// Used to prove superseded callbacks are ignored even if their timer fires.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.fn()
	}
}

var errBoom = errors.New("boom")

// --- Fixtures ---

func int64Ptr(v int64) *int64 {
	return &v
}

func sampleRecords() []domain.ProductRecord {
	return []domain.ProductRecord{
		{ID: int64Ptr(1), Description: "Paracetamol 500mg", Brand: "Genérico", EAN: "789000000001"},
		{ID: int64Ptr(2), Description: "Dipirona 1g", Brand: "Medley", EAN: "789000000002"},
		{ID: int64Ptr(3), Description: "Paracetamol 750mg", Brand: "Tylenol", EAN: "789000000003"},
		{ID: int64Ptr(4), Description: "Ibuprofeno 400mg", Brand: "Medley", EAN: "789100000004"},
	}
}

func loadedCatalog(records []domain.ProductRecord) *CatalogService {
	c := NewCatalogService(nil)
	c.Replace(records)
	return c
}
