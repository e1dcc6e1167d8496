package driving

import "github.com/custodia-labs/pricecollect/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// GetValue returns the raw value stored under a config key.
	GetValue(key string) (any, bool)

	// SetValue parses and stores a single config key.
	SetValue(key, value string) error

	// Keys lists the recognised config keys in display order.
	Keys() []string

	// Validate checks that current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
