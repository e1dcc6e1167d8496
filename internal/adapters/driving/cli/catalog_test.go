package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

func TestCatalogCmd_Subcommands(t *testing.T) {
	assert.Equal(t, "catalog", catalogCmd.Use)
	assert.Equal(t, "load", catalogLoadCmd.Use)
	assert.Equal(t, "stats", catalogStatsCmd.Use)
}

func TestCatalogLoad(t *testing.T) {
	ts, cleanupFn := setupTestServicesWithMocks()
	defer cleanupFn()
	ts.catalog.LoadFunc = func(_ context.Context) (domain.CatalogStats, error) {
		return domain.CatalogStats{Generation: 3, Source: "file:catalog.json", Records: 1200, Skipped: 2}, nil
	}

	out, err := execute(t, "catalog", "load")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1200 products from file:catalog.json (generation 3)")
	assert.Contains(t, out, "Skipped 2 malformed rows")
}

func TestCatalogLoad_Failure(t *testing.T) {
	ts, cleanupFn := setupTestServicesWithMocks()
	defer cleanupFn()
	ts.catalog.LoadFunc = func(_ context.Context) (domain.CatalogStats, error) {
		return domain.CatalogStats{}, domain.ErrCatalogUnavailable
	}

	_, err := execute(t, "catalog", "load")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestCatalogStats(t *testing.T) {
	ts, cleanupFn := setupTestServicesWithMocks()
	defer cleanupFn()
	ts.catalog.LoadFunc = func(_ context.Context) (domain.CatalogStats, error) {
		return domain.CatalogStats{
			Generation:   1,
			Source:       "https://example.com/catalog.json",
			Records:      3,
			Descriptions: 3,
			Brands:       2,
			EANs:         3,
			IDs:          1,
			LoadedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}, nil
	}

	out, err := execute(t, "catalog", "stats")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.catalog.loads)
	assert.Contains(t, out, "Source:       https://example.com/catalog.json")
	assert.Contains(t, out, "Loaded at:    2024-05-01T12:00:00Z")
	assert.Contains(t, out, "Brands:       2")
	assert.NotContains(t, out, "Last load error")
}
