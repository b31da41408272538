package ports

import (
	"context"

	"github.com/aretw0/fangraph/pkg/config"
)

// ConfigStore defines the interface for persisting named configs.
type ConfigStore interface {
	// Save persists the config under name, replacing any previous one.
	Save(ctx context.Context, name string, cfg *config.Config) error

	// Load retrieves the config saved under name.
	// Returns domain.ErrConfigNotFound if it does not exist.
	Load(ctx context.Context, name string) (*config.Config, error)

	// Delete removes the config. Deleting a missing config is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all saved configs, sorted.
	List(ctx context.Context) ([]string, error)
}

// SettingsStore defines the interface for persisting application settings.
type SettingsStore interface {
	// LoadSettings returns the saved settings, or defaults when none were saved.
	LoadSettings(ctx context.Context) (*config.Settings, error)

	// SaveSettings persists the settings.
	SaveSettings(ctx context.Context, s *config.Settings) error
}
