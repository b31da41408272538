package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
)

// Store implements ports.ConfigStore and ports.SettingsStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string]*config.Config
	settings *config.Settings
	mu       sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*config.Config),
	}
}

// Save persists the config in memory.
func (s *Store) Save(ctx context.Context, name string, cfg *config.Config) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := cfg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves the config from memory.
func (s *Store) Load(ctx context.Context, name string) (*config.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.data[name]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}

	// Copy on read so the caller can't mutate the stored config through the pointer
	return cfg.Clone(), nil
}

// Delete removes the config.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the saved config names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// LoadSettings returns the saved settings, or the defaults.
func (s *Store) LoadSettings(ctx context.Context) (*config.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return config.DefaultSettings(), nil
	}
	copied := *s.settings
	return &copied, nil
}

// SaveSettings persists the settings after validating them.
func (s *Store) SaveSettings(ctx context.Context, settings *config.Settings) error {
	if err := config.ValidateSettings(settings); err != nil {
		return err
	}
	copied := *settings

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &copied
	return nil
}
