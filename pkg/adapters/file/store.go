package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
)

// Store implements ports.ConfigStore using the local filesystem.
// It stores one document per config in a directory, named after the config.
type Store struct {
	BasePath string
	Format   config.Format
}

// New creates a new Store with the given base path, writing YAML documents.
// If basePath is empty, it defaults to ".fangraph/configs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".fangraph", "configs")
	}
	return &Store{BasePath: basePath, Format: config.FormatYAML}
}

func (s *Store) ext() string {
	if s.Format == config.FormatJSON {
		return ".json"
	}
	return ".yaml"
}

func (s *Store) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("config name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", &domain.ValidationError{Key: "name", Reason: "config name cannot contain path separators", Value: name}
	}
	return filepath.Join(s.BasePath, name+s.ext()), nil
}

// Save persists the config atomically.
func (s *Store) Save(ctx context.Context, name string, cfg *config.Config) error {
	destPath, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := config.Encode(cfg, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := writeAtomic(destPath, data); err != nil {
		return fmt.Errorf("failed to save config %q: %w", name, err)
	}
	return nil
}

// Load reads and decodes a config. It does not validate it.
func (s *Store) Load(ctx context.Context, name string) (*config.Config, error) {
	filePath, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := config.Decode(data, s.Format)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", name, err)
	}
	return cfg, nil
}

// Delete removes the config file.
func (s *Store) Delete(ctx context.Context, name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// List returns the saved config names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != s.ext() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, s.ext()))
	}
	slices.Sort(names)
	return names, nil
}
