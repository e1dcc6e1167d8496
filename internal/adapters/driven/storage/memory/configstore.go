package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigPath is what an in-memory ConfigStore reports as its path. Passing
// it as the config directory selects a throwaway configuration.
const ConfigPath = ":memory:"

// ConfigStore keeps settings in a map for the lifetime of the process.
// Nothing is written to disk; Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// ConfigOption seeds a ConfigStore.
type ConfigOption func(map[string]any)

// WithValues presets keys, e.g. to force the memory storage backend.
func WithValues(values map[string]any) ConfigOption {
	return func(m map[string]any) {
		maps.Copy(m, values)
	}
}

// NewConfigStore returns an empty store, or one seeded by opts.
func NewConfigStore(opts ...ConfigOption) *ConfigStore {
	values := make(map[string]any)
	for _, opt := range opts {
		opt(values)
	}
	return &ConfigStore{values: values}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// lookup returns the value at key when it has type T.
func lookup[T any](s *ConfigStore, key string) (T, bool) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

func (s *ConfigStore) GetString(key string) string {
	str, _ := lookup[string](s, key)
	return str
}

func (s *ConfigStore) GetBool(key string) bool {
	b, _ := lookup[bool](s, key)
	return b
}

// GetInt accepts any integer width and truncates floats, matching what a
// TOML decode or a SettingsService write may leave behind.
func (s *ConfigStore) GetInt(key string) int {
	n, _ := number(s, key)
	return int(n)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	n, _ := number(s, key)
	return n
}

func number(s *ConfigStore, key string) (float64, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// GetStringSlice also accepts []any holding strings; other items are dropped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if list, ok := lookup[[]string](s, key); ok {
		return list
	}
	items, ok := lookup[[]any](s, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ConfigPath }
