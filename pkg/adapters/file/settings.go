package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/fangraph/pkg/config"
)

// SettingsFile implements ports.SettingsStore with a single document.
type SettingsFile struct {
	Path string
}

// NewSettingsFile creates a settings store at path. The format follows the extension.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{Path: path}
}

// LoadSettings reads the settings, or returns the defaults when the file does not exist yet.
func (f *SettingsFile) LoadSettings(ctx context.Context) (*config.Settings, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s, err := config.DecodeSettings(data, config.FormatFromPath(f.Path))
	if err != nil {
		return nil, err
	}
	if err := config.ValidateSettings(s); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings validates and writes the settings atomically.
func (f *SettingsFile) SaveSettings(ctx context.Context, s *config.Settings) error {
	if err := config.ValidateSettings(s); err != nil {
		return err
	}
	data, err := config.EncodeSettings(s, config.FormatFromPath(f.Path))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return writeAtomic(f.Path, data)
}
