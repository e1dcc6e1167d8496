package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/pricing"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCatalogURL      = "catalog.url"
	keyCatalogPath     = "catalog.path"
	keyCatalogWatch    = "catalog.watch"
	keyDebounceMS      = "search.debounce_ms"
	keySuggestionLimit = "search.suggestion_limit"
	keyMinQueryLength  = "search.min_query_length"
	keyDefaultField    = "search.default_field"
	keyStoreNames      = "stores.names"
	keyPricingLocale   = "pricing.locale"
	keyPricingCurrency = "pricing.currency"
	keyStorageBackend  = "storage.backend"
	keyRedisAddr       = "storage.redis_addr"
	keyStorageKey      = "storage.key"
	keyLocationEnabled = "location.enabled"
	keyLatitude        = "location.latitude"
	keyLongitude       = "location.longitude"
	keyLocationLevel   = "location.precision_level"
	keyExportDir       = "export.dir"
	keyDeviceName      = "export.device_name"
	keyExportUpload    = "export.upload"
	keyDriveFolderID   = "export.drive_folder_id"
	keyDriveToken      = "export.drive_token"
	keyMetricsAddr     = "metrics.addr"
)

// valueKind is how a config value is parsed from text.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindList
)

// settingKeys lists every recognised key in display order.
var settingKeys = []struct {
	key  string
	kind valueKind
}{
	{keyCatalogURL, kindString},
	{keyCatalogPath, kindString},
	{keyCatalogWatch, kindBool},
	{keyDebounceMS, kindInt},
	{keySuggestionLimit, kindInt},
	{keyMinQueryLength, kindInt},
	{keyDefaultField, kindString},
	{keyStoreNames, kindList},
	{keyPricingLocale, kindString},
	{keyPricingCurrency, kindString},
	{keyStorageBackend, kindString},
	{keyRedisAddr, kindString},
	{keyStorageKey, kindString},
	{keyLocationEnabled, kindBool},
	{keyLatitude, kindFloat},
	{keyLongitude, kindFloat},
	{keyLocationLevel, kindInt},
	{keyExportDir, kindString},
	{keyDeviceName, kindString},
	{keyExportUpload, kindBool},
	{keyDriveFolderID, kindString},
	{keyDriveToken, kindString},
	{keyMetricsAddr, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
// Missing or malformed values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Catalog: domain.CatalogSettings{
			URL:   s.getString(keyCatalogURL, defaults.Catalog.URL),
			Path:  s.configStore.GetString(keyCatalogPath),
			Watch: s.getBool(keyCatalogWatch, defaults.Catalog.Watch),
		},
		Search: domain.SearchSettings{
			DebounceWindow: time.Duration(s.getIntAllowZero(keyDebounceMS,
				int(defaults.Search.DebounceWindow/time.Millisecond))) * time.Millisecond,
			SuggestionLimit: s.getInt(keySuggestionLimit, defaults.Search.SuggestionLimit),
			MinQueryLength:  s.getIntAllowZero(keyMinQueryLength, defaults.Search.MinQueryLength),
			DefaultField:    s.getSearchField(defaults.Search.DefaultField),
		},
		Stores: s.getStores(defaults.Stores),
		Pricing: domain.PricingSettings{
			Locale:   s.getString(keyPricingLocale, defaults.Pricing.Locale),
			Currency: s.getString(keyPricingCurrency, defaults.Pricing.Currency),
		},
		Storage: domain.StorageSettings{
			Backend:   s.getBackend(defaults.Storage.Backend),
			RedisAddr: s.getString(keyRedisAddr, defaults.Storage.RedisAddr),
			Key:       s.getString(keyStorageKey, defaults.Storage.Key),
		},
		Location: domain.LocationSettings{
			Enabled:        s.getBool(keyLocationEnabled, defaults.Location.Enabled),
			Latitude:       s.configStore.GetFloat(keyLatitude),
			Longitude:      s.configStore.GetFloat(keyLongitude),
			PrecisionLevel: s.getIntAllowZero(keyLocationLevel, defaults.Location.PrecisionLevel),
		},
		Export: domain.ExportSettings{
			Dir:           s.configStore.GetString(keyExportDir),
			DeviceName:    s.getString(keyDeviceName, defaults.Export.DeviceName),
			Upload:        s.getBool(keyExportUpload, defaults.Export.Upload),
			DriveFolderID: s.configStore.GetString(keyDriveFolderID),
			DriveToken:    s.configStore.GetString(keyDriveToken),
		},
		Metrics: domain.MetricsSettings{
			Addr: s.configStore.GetString(keyMetricsAddr),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyCatalogURL, settings.Catalog.URL},
		{keyCatalogPath, settings.Catalog.Path},
		{keyCatalogWatch, settings.Catalog.Watch},
		{keyDebounceMS, int(settings.Search.DebounceWindow / time.Millisecond)},
		{keySuggestionLimit, settings.Search.SuggestionLimit},
		{keyMinQueryLength, settings.Search.MinQueryLength},
		{keyDefaultField, settings.Search.DefaultField.String()},
		{keyStoreNames, append([]string{}, settings.Stores...)},
		{keyPricingLocale, settings.Pricing.Locale},
		{keyPricingCurrency, settings.Pricing.Currency},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyRedisAddr, settings.Storage.RedisAddr},
		{keyStorageKey, settings.Storage.Key},
		{keyLocationEnabled, settings.Location.Enabled},
		{keyLatitude, settings.Location.Latitude},
		{keyLongitude, settings.Location.Longitude},
		{keyLocationLevel, settings.Location.PrecisionLevel},
		{keyExportDir, settings.Export.Dir},
		{keyDeviceName, settings.Export.DeviceName},
		{keyExportUpload, settings.Export.Upload},
		{keyDriveFolderID, settings.Export.DriveFolderID},
		{keyMetricsAddr, settings.Metrics.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Never blank out a stored token just because the caller left it empty
	if settings.Export.DriveToken != "" {
		if err := s.configStore.Set(keyDriveToken, settings.Export.DriveToken); err != nil {
			return fmt.Errorf("save %s: %w", keyDriveToken, err)
		}
	}

	return nil
}

// Keys lists the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for _, k := range settingKeys {
		keys = append(keys, k.key)
	}
	return keys
}

// GetValue returns the effective value of a key: the stored value when set,
// otherwise the default. Unknown keys report false.
func (s *SettingsService) GetValue(key string) (any, bool) {
	if _, ok := kindOf(key); !ok {
		return nil, false
	}
	settings, err := s.Get()
	if err != nil {
		return nil, false
	}
	return effectiveValue(settings, key), true
}

// SetValue parses value according to the key's type, checks it and stores it.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := checkValue(key, parsed); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	return s.configStore.Set(key, parsed)
}

// Validate checks that the current settings are usable together.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	verr := &domain.ValidationError{}
	if settings.Catalog.URL == "" && settings.Catalog.Path == "" {
		verr.Add(keyCatalogURL, "a catalog url or path is required")
	}
	if settings.Catalog.Watch && settings.Catalog.Path == "" {
		verr.Add(keyCatalogWatch, "watching requires catalog.path")
	}
	if settings.Search.DebounceWindow < 0 {
		verr.Add(keyDebounceMS, "must not be negative")
	}
	if settings.Search.SuggestionLimit <= 0 {
		verr.Add(keySuggestionLimit, "must be positive")
	}
	if settings.Search.MinQueryLength < 0 {
		verr.Add(keyMinQueryLength, "must not be negative")
	}
	if _, err := pricing.NewFormatter(settings.Pricing.Locale, settings.Pricing.Currency); err != nil {
		verr.Add("pricing", err.Error())
	}
	if settings.Storage.Backend == domain.StorageRedis && settings.Storage.RedisAddr == "" {
		verr.Add(keyRedisAddr, "required for the redis backend")
	}
	if settings.Storage.Key == "" {
		verr.Add(keyStorageKey, "required")
	}
	if settings.Location.Enabled {
		loc := domain.Location{Latitude: settings.Location.Latitude, Longitude: settings.Location.Longitude}
		if !loc.Valid() {
			verr.Add("location", domain.ErrInvalidLocation.Error())
		}
	}
	if !validPrecision(settings.Location.PrecisionLevel) {
		verr.Add(keyLocationLevel, fmt.Sprintf("must be between 0 and %d", domain.MaxLocationPrecision))
	}
	if settings.Export.Upload && settings.Export.DriveToken == "" {
		verr.Add(keyDriveToken, "required when export.upload is enabled")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func kindOf(key string) (valueKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseValue(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

// checkValue rejects values that parse but can never be used.
func checkValue(key string, value any) error {
	switch key {
	case keyDefaultField:
		_, err := domain.ParseSearchField(value.(string))
		return err
	case keyStorageBackend:
		if b := domain.StorageBackend(value.(string)); !b.IsValid() {
			return fmt.Errorf("unknown backend %q", b)
		}
	case keyDebounceMS, keyMinQueryLength:
		if value.(int) < 0 {
			return fmt.Errorf("must not be negative")
		}
	case keySuggestionLimit:
		if value.(int) <= 0 {
			return fmt.Errorf("must be positive")
		}
	case keyLatitude:
		if lat := value.(float64); lat < -90 || lat > 90 {
			return domain.ErrInvalidLocation
		}
	case keyLongitude:
		if lon := value.(float64); lon < -180 || lon > 180 {
			return domain.ErrInvalidLocation
		}
	case keyLocationLevel:
		if !validPrecision(value.(int)) {
			return fmt.Errorf("must be between 0 and %d", domain.MaxLocationPrecision)
		}
	}
	return nil
}

func validPrecision(level int) bool {
	return level >= 0 && level <= domain.MaxLocationPrecision
}

func effectiveValue(settings *domain.AppSettings, key string) any {
	switch key {
	case keyCatalogURL:
		return settings.Catalog.URL
	case keyCatalogPath:
		return settings.Catalog.Path
	case keyCatalogWatch:
		return settings.Catalog.Watch
	case keyDebounceMS:
		return int(settings.Search.DebounceWindow / time.Millisecond)
	case keySuggestionLimit:
		return settings.Search.SuggestionLimit
	case keyMinQueryLength:
		return settings.Search.MinQueryLength
	case keyDefaultField:
		return settings.Search.DefaultField.String()
	case keyStoreNames:
		return settings.Stores
	case keyPricingLocale:
		return settings.Pricing.Locale
	case keyPricingCurrency:
		return settings.Pricing.Currency
	case keyStorageBackend:
		return settings.Storage.Backend.String()
	case keyRedisAddr:
		return settings.Storage.RedisAddr
	case keyStorageKey:
		return settings.Storage.Key
	case keyLocationEnabled:
		return settings.Location.Enabled
	case keyLatitude:
		return settings.Location.Latitude
	case keyLongitude:
		return settings.Location.Longitude
	case keyLocationLevel:
		return settings.Location.PrecisionLevel
	case keyExportDir:
		return settings.Export.Dir
	case keyDeviceName:
		return settings.Export.DeviceName
	case keyExportUpload:
		return settings.Export.Upload
	case keyDriveFolderID:
		return settings.Export.DriveFolderID
	case keyDriveToken:
		return settings.Export.DriveToken
	case keyMetricsAddr:
		return settings.Metrics.Addr
	default:
		return nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSearchField(defaultVal domain.SearchField) domain.SearchField {
	val := s.configStore.GetString(keyDefaultField)
	if val == "" {
		return defaultVal
	}
	field, err := domain.ParseSearchField(val)
	if err != nil {
		return defaultVal
	}
	return field
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStores(defaultVal []string) []string {
	if _, exists := s.configStore.Get(keyStoreNames); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(keyStoreNames)
}
