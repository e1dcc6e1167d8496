package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pricecollect/internal/adapters/driven/catalog/filesource"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/catalog/httpsource"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/export/gdrive"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/export/localfs"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/geo"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/metrics/prom"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/pricecollect/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pricecollect/internal/adapters/driving/cli"
	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/services"
	"github.com/custodia-labs/pricecollect/internal/logger"
	"github.com/custodia-labs/pricecollect/internal/pricing"
)

// buildServices wires adapters and services from the settings in configDir.
func buildServices(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	configStore, err := openConfig(configDir)
	if err != nil {
		return nil, nil, err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("configuration has problems", "error", err)
	}

	prices, err := pricing.NewFormatter(settings.Pricing.Locale, settings.Pricing.Currency)
	if err != nil {
		logger.Warn("falling back to default price format", "error", err)
		prices = pricing.Default()
	}

	metrics := prom.New()

	catalog := services.NewCatalogService(catalogSource(settings.Catalog))
	catalog.SetMetrics(metrics)

	suggestions := services.NewSuggestionEngine(catalog, settings.Search)
	suggestions.SetMetrics(metrics)

	resolver := services.NewResolver(catalog)
	resolver.SetMetrics(metrics)

	// Storage and the uploader both touch the network, so open them together.
	var (
		store    driven.KeyValueStore
		closer   func() error
		uploader driven.Uploader
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		store, closer, err = openStore(gctx, settings.Storage, configDir)
		return err
	})
	g.Go(func() error {
		var err error
		uploader, err = openUploader(gctx, settings.Export)
		return err
	})
	if err := g.Wait(); err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, nil, err
	}

	observations := services.NewObservationService(resolver, store, openLocator(settings.Location), settings.Storage.Key, settings.Stores)
	observations.SetMetrics(metrics)
	if err := observations.Restore(ctx); err != nil {
		logger.Warn("starting with an empty observation list", "error", err)
	}
	if len(observations.List()) == 0 {
		observations.StartSession(ctx)
	}

	sink, err := localfs.New(settings.Export.Dir)
	if err != nil {
		logger.Warn("file export disabled", "error", err)
	}
	var fileSink driven.FileSink
	if sink != nil {
		fileSink = sink
	}
	export := services.NewExportService(observations, prices, fileSink, uploader, settings.Export.DeviceName)

	svc := &cli.Services{
		Catalog:      catalog,
		Suggestions:  suggestions,
		Resolver:     resolver,
		Observations: observations,
		Export:       export,
		Prices:       prices,
		Settings:     settingsService,
		Background: func(ctx context.Context) error {
			return runBackground(ctx, catalog, settings, metrics)
		},
	}

	cleanup := func() {
		if closer != nil {
			if err := closer(); err != nil {
				logger.Warn("closing store", "error", err)
			}
		}
	}
	return svc, cleanup, nil
}

// catalogSource prefers a local file over the remote URL.
func catalogSource(cfg domain.CatalogSettings) driven.CatalogSource {
	if cfg.Path != "" {
		return filesource.New(cfg.Path)
	}
	return httpsource.New(cfg.URL, httpsource.WithLimiter(ratelimit.New(ratelimit.TargetCatalog)))
}

// openStore returns the key/value store for the configured backend and a
// function closing it.
func openStore(ctx context.Context, cfg domain.StorageSettings, configDir string) (driven.KeyValueStore, func() error, error) {
	switch cfg.Backend {
	case domain.StorageMemory:
		return memory.NewKVStore(), nil, nil
	case domain.StorageRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return store, store.Close, nil
	case domain.StorageSQLite:
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	return store, store.Close, nil
}

// openConfig returns the TOML store in configDir, or a throwaway store using
// memory storage when configDir is memory.ConfigPath.
func openConfig(configDir string) (driven.ConfigStore, error) {
	if configDir == memory.ConfigPath {
		return memory.NewConfigStore(memory.WithValues(map[string]any{
			"storage.backend": string(domain.StorageMemory),
		})), nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// openLocator returns nil when location is disabled or misconfigured.
func openLocator(cfg domain.LocationSettings) driven.Locator {
	if !cfg.Enabled {
		return nil
	}
	static, err := geo.NewStatic(cfg.Latitude, cfg.Longitude, geo.WithPrecision(cfg.PrecisionLevel))
	if err != nil {
		logger.Warn("location disabled", "error", err)
		return nil
	}
	logger.Debug("location snapshot configured", "cell", static.Cell(), "level", cfg.PrecisionLevel)
	return static
}

// openUploader returns nil when upload is disabled.
func openUploader(ctx context.Context, cfg domain.ExportSettings) (driven.Uploader, error) {
	if !cfg.Upload {
		return nil, nil
	}
	uploader, err := gdrive.New(ctx, cfg.DriveToken, cfg.DriveFolderID)
	if err != nil {
		return nil, fmt.Errorf("configuring drive upload: %w", err)
	}
	return uploader, nil
}

// runBackground runs the catalog watcher and the metrics endpoint until ctx
// is cancelled or one of them fails.
func runBackground(ctx context.Context, catalog *services.CatalogService, settings *domain.AppSettings, metrics *prom.Metrics) error {
	g, gctx := errgroup.WithContext(ctx)

	if settings.Catalog.Watch {
		g.Go(func() error {
			return catalog.Watch(gctx)
		})
	}

	if addr := settings.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("metrics endpoint listening", "addr", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
