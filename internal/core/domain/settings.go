package domain

import "time"

// StorageBackend selects where the observation list is persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageRedis persists to a Redis server shared between devices.
	StorageRedis StorageBackend = "redis"

	// StorageMemory keeps the list in memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageRedis, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (local file)"
	case StorageRedis:
		return "Redis (shared server)"
	case StorageMemory:
		return "Memory (not durable)"
	default:
		return unknownDescription
	}
}

// CatalogSettings configures where the catalog snapshot comes from.
type CatalogSettings struct {
	// URL is the remote snapshot location.
	URL string

	// Path is a local snapshot file. Takes precedence over URL when set.
	Path string

	// Watch reloads the catalog when the local file changes.
	Watch bool
}

// SearchSettings holds typeahead behaviour configuration.
type SearchSettings struct {
	// DebounceWindow is the quiet period before suggestions are evaluated.
	DebounceWindow time.Duration

	// SuggestionLimit caps the number of suggestions returned.
	SuggestionLimit int

	// MinQueryLength is the shortest query that produces suggestions.
	MinQueryLength int

	// DefaultField is the field selected when a session starts.
	DefaultField SearchField
}

// PricingSettings controls price display.
type PricingSettings struct {
	// Locale is a BCP 47 tag such as "pt-BR".
	Locale string

	// Currency is an ISO 4217 code such as "BRL".
	Currency string
}

// StorageSettings configures observation persistence.
type StorageSettings struct {
	// Backend selects the key/value store implementation.
	Backend StorageBackend

	// RedisAddr is the Redis server address.
	RedisAddr string

	// Key is the storage key holding the serialized observation list.
	Key string
}

// LocationSettings provides a fixed location snapshot for sessions.
type LocationSettings struct {
	Enabled   bool
	Latitude  float64
	Longitude float64

	// PrecisionLevel is the S2 cell level the location is snapped to.
	// MaxLocationPrecision keeps the configured coordinates as they are.
	PrecisionLevel int
}

// MaxLocationPrecision is the finest S2 cell level.
const MaxLocationPrecision = 30

// ExportSettings configures export destinations.
type ExportSettings struct {
	// Dir is where export files are written.
	Dir string

	// DeviceName prefixes export file names.
	DeviceName string

	// Upload enables the remote JSON upload.
	Upload bool

	// DriveFolderID is the Google Drive folder receiving uploads.
	DriveFolderID string

	// DriveToken is an OAuth access token for Google Drive.
	DriveToken string
}

// MetricsSettings configures the metrics endpoint.
type MetricsSettings struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Catalog  CatalogSettings
	Search   SearchSettings
	Stores   []string
	Pricing  PricingSettings
	Storage  StorageSettings
	Location LocationSettings
	Export   ExportSettings
	Metrics  MetricsSettings
}

// DefaultCatalogURL is the published catalog snapshot.
const DefaultCatalogURL = "https://tabelaprecos.s3.amazonaws.com/database_price.json"

// DefaultDeviceName is used when no device name is configured.
const DefaultDeviceName = "unknown_device"

// DefaultStores returns the stores offered when none are configured.
func DefaultStores() []string {
	return []string{"Drogasil", "Bom Preço", "Drogaria", "Pague Menos"}
}

// DefaultAppSettings returns settings with sensible defaults.
// Location and upload are off until explicitly configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Catalog: CatalogSettings{
			URL: DefaultCatalogURL,
		},
		Search: SearchSettings{
			DebounceWindow:  300 * time.Millisecond,
			SuggestionLimit: 10,
			MinQueryLength:  1,
			DefaultField:    FieldEAN,
		},
		Stores: DefaultStores(),
		Pricing: PricingSettings{
			Locale:   "pt-BR",
			Currency: "BRL",
		},
		Storage: StorageSettings{
			Backend:   StorageSQLite,
			RedisAddr: "localhost:6379",
			Key:       "observations",
		},
		Location: LocationSettings{
			PrecisionLevel: MaxLocationPrecision,
		},
		Export: ExportSettings{
			DeviceName: DefaultDeviceName,
		},
	}
}

// AllStorageBackends returns all available storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageRedis, StorageMemory}
}
