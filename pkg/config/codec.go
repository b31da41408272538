package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format of the config boundary.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension. Anything but .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a config document. It does not validate it.
func Decode(data []byte, format Format) (*Config, error) {
	cfg := &Config{}
	if err := decode(data, format, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Encode serializes a config document.
func Encode(cfg *Config, format Format) ([]byte, error) {
	return encode(cfg, format)
}

// DecodeSettings parses a settings document, filling unset fields with defaults.
func DecodeSettings(data []byte, format Format) (*Settings, error) {
	s := DefaultSettings()
	if err := decode(data, format, s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// EncodeSettings serializes a settings document.
func EncodeSettings(s *Settings, format Format) ([]byte, error) {
	return encode(s, format)
}

// decode goes through a generic map so YAML and JSON share one binding path.
// Weak typing lets hand-written files use "40" where 40 is expected.
func decode(data []byte, format Format, out any) error {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func encode(v any, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(v, "", "  ")
	}
	return yaml.Marshal(v)
}
