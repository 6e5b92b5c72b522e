package driven

import "github.com/custodia-labs/rpa-cli/internal/core/domain"

// ConfigStore provides access to persisted settings.
// Implementations handle persistence (e.g., TOML files).
type ConfigStore interface {
	// Settings returns a copy of the current settings.
	Settings() domain.Settings

	// Update applies fn to the settings and persists the result.
	Update(fn func(*domain.Settings)) error

	// Save persists the current settings to storage.
	Save() error

	// Load reads settings from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
