package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigExtensions lists the file extensions recognized as config files.
var ConfigExtensions = []string{".yaml", ".yml", ".toml"}

// IsConfigFile reports whether path has a config file extension.
func IsConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ConfigExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadConfigFile loads a YAML or TOML file on top of cfg. Keys absent from
// the file keep their current values, which is how files layer.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return nil
}

// FindConfigFile searches for config file in standard locations
// Returns empty string if not found (non-fatal)
func FindConfigFile() string {
	var locations []string
	for _, ext := range ConfigExtensions {
		locations = append(locations, "./mediapass"+ext)
	}
	if home, err := os.UserHomeDir(); err == nil {
		for _, ext := range ConfigExtensions {
			locations = append(locations, filepath.Join(home, ".mediapass", "config"+ext))
		}
	}
	for _, ext := range ConfigExtensions {
		locations = append(locations, "/etc/mediapass/config"+ext)
	}

	for _, path := range locations {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves configuration to a YAML or TOML file, chosen by extension
func SaveConfigFile(cfg *Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
