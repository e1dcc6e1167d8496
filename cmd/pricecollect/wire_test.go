package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pricecollect/internal/adapters/driven/catalog/filesource"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/catalog/httpsource"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
)

func TestCatalogSource(t *testing.T) {
	src := catalogSource(domain.CatalogSettings{URL: "https://example.com/c.json", Path: "/tmp/catalog.json"})
	assert.IsType(t, &filesource.Source{}, src)

	src = catalogSource(domain.CatalogSettings{URL: "https://example.com/c.json"})
	assert.IsType(t, &httpsource.Source{}, src)
}

func TestOpenStore_Memory(t *testing.T) {
	store, closer, err := openStore(context.Background(), domain.StorageSettings{Backend: domain.StorageMemory}, "")

	require.NoError(t, err)
	assert.IsType(t, &memory.KVStore{}, store)
	assert.Nil(t, closer)
}

func TestOpenStore_SQLite(t *testing.T) {
	dir := t.TempDir()

	store, closer, err := openStore(context.Background(), domain.StorageSettings{Backend: domain.StorageSQLite}, dir)

	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer()

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	got, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err)
}

func TestOpenUploader_Disabled(t *testing.T) {
	uploader, err := openUploader(context.Background(), domain.ExportSettings{})

	require.NoError(t, err)
	assert.Nil(t, uploader)
}

func TestOpenUploader_MissingToken(t *testing.T) {
	_, err := openUploader(context.Background(), domain.ExportSettings{Upload: true})

	assert.Error(t, err)
}

func TestBuildServices(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir := filepath.Join(home, "cfg")

	catalogPath := filepath.Join(home, "catalog.json")
	require.NoError(t, os.WriteFile(catalogPath,
		[]byte(`[{"idprodutoint":1,"descricao":"Dipirona 1g","marca":"Medley","codigoean":"7891234"}]`), 0600))

	store, err := file.NewConfigStore(configDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("catalog.path", catalogPath))
	require.NoError(t, store.Set("storage.backend", "memory"))
	require.NoError(t, store.Set("export.dir", filepath.Join(home, "exports")))
	require.NoError(t, store.Save())

	svc, cleanup, err := buildServices(context.Background(), configDir)
	require.NoError(t, err)
	defer cleanup()

	stats, err := svc.Catalog.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)

	product, ok := svc.Resolver.Resolve(domain.FieldEAN, "7891234")
	require.True(t, ok)
	assert.Equal(t, "Dipirona 1g", product.Description)

	obs, err := svc.Observations.Confirm(context.Background(), domain.ConfirmRequest{
		Field: domain.FieldEAN, Query: "7891234", Competitor: "Drogasil", RawPrice: "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), obs.PriceMinor)
	assert.NotEmpty(t, svc.Observations.Session().ID)

	result, err := svc.Export.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.FileExists(t, result.Location)
	assert.False(t, result.Uploaded)

	require.NotNil(t, svc.Background)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Background(ctx))
}

func TestOpenConfig_Memory(t *testing.T) {
	store, err := openConfig(memory.ConfigPath)

	require.NoError(t, err)
	assert.IsType(t, &memory.ConfigStore{}, store)
	assert.Equal(t, memory.ConfigPath, store.Path())
	assert.Equal(t, "memory", store.GetString("storage.backend"))
}

func TestOpenConfig_File(t *testing.T) {
	dir := t.TempDir()

	store, err := openConfig(dir)

	require.NoError(t, err)
	assert.IsType(t, &file.ConfigStore{}, store)
}

func TestOpenLocator(t *testing.T) {
	assert.Nil(t, openLocator(domain.LocationSettings{Latitude: -8.0476, Longitude: -34.877}))

	bad := openLocator(domain.LocationSettings{Enabled: true, Latitude: 95, PrecisionLevel: domain.MaxLocationPrecision})
	assert.Nil(t, bad)

	exact := openLocator(domain.LocationSettings{
		Enabled: true, Latitude: -8.0476, Longitude: -34.877, PrecisionLevel: domain.MaxLocationPrecision,
	})
	require.NotNil(t, exact)
	loc, err := exact.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Location{Latitude: -8.0476, Longitude: -34.877}, loc)

	coarse := openLocator(domain.LocationSettings{
		Enabled: true, Latitude: -8.0476, Longitude: -34.877, PrecisionLevel: 10,
	})
	require.NotNil(t, coarse)
	loc, err = coarse.Locate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, -8.0476, loc.Latitude)
	assert.InDelta(t, -8.0476, loc.Latitude, 0.1)
}
