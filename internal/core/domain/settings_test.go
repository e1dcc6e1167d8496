package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStorageBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  StorageBackend
		expected bool
	}{
		{name: "sqlite is valid", backend: StorageSQLite, expected: true},
		{name: "redis is valid", backend: StorageRedis, expected: true},
		{name: "memory is valid", backend: StorageMemory, expected: true},
		{name: "empty is invalid", backend: StorageBackend(""), expected: false},
		{name: "postgres is invalid", backend: StorageBackend("postgres"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestStorageBackend_Description(t *testing.T) {
	for _, b := range AllStorageBackends() {
		assert.NotEqual(t, "Unknown", b.Description(), b.String())
	}
	assert.Equal(t, "Unknown", StorageBackend("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultCatalogURL, s.Catalog.URL)
	assert.Empty(t, s.Catalog.Path)
	assert.Equal(t, 300*time.Millisecond, s.Search.DebounceWindow)
	assert.Equal(t, 10, s.Search.SuggestionLimit)
	assert.Equal(t, 1, s.Search.MinQueryLength)
	assert.Equal(t, FieldEAN, s.Search.DefaultField)
	assert.Equal(t, []string{"Drogasil", "Bom Preço", "Drogaria", "Pague Menos"}, s.Stores)
	assert.Equal(t, "pt-BR", s.Pricing.Locale)
	assert.Equal(t, "BRL", s.Pricing.Currency)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, "observations", s.Storage.Key)
	assert.False(t, s.Location.Enabled)
	assert.Equal(t, DefaultDeviceName, s.Export.DeviceName)
	assert.False(t, s.Export.Upload)
	assert.Empty(t, s.Metrics.Addr)
}
