package config

import "time"

// DefaultUpdateDelay is the tick interval used when none is configured.
const DefaultUpdateDelay = time.Second

// CacheName is the reserved config name holding the unsaved runtime graph at exit.
const CacheName = ".cache"

// Settings are the persisted application preferences.
type Settings struct {
	// UpdateDelay is the interval between two ticks.
	UpdateDelay time.Duration `json:"update_delay" yaml:"update_delay" mapstructure:"update_delay" validate:"gte=100ms"`

	// CurrentConfig is the name of the active config. Empty means none.
	CurrentConfig string `json:"current_config,omitempty" yaml:"current_config,omitempty" mapstructure:"current_config"`
}

// DefaultSettings returns the settings used on first start.
func DefaultSettings() *Settings {
	return &Settings{UpdateDelay: DefaultUpdateDelay}
}
