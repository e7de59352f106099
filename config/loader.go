package config

import (
	"fmt"
)

// LoadConfig loads configuration with priority:
// CLI flags > override file > discovered config file > Defaults.
//
// args are the positional arguments. If the first one names a config file
// it is applied as the override layer; the rest are inputs and replace any
// inputs the config files listed.
func LoadConfig(args []string, flags *Flags) (*Config, error) {
	// 1. Start with defaults
	cfg := DefaultConfig()

	// 2. Discovered config file
	if path := FindConfigFile(); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// 3. Override file: first positional argument, then --config
	if len(args) > 0 && IsConfigFile(args[0]) {
		if err := cfg.applyFile(args[0]); err != nil {
			return nil, err
		}
		args = args[1:]
	}
	if flags != nil && flags.ConfigFile != "" {
		if err := cfg.applyFile(flags.ConfigFile); err != nil {
			return nil, err
		}
	}

	// 4. CLI flags (highest priority, overwrites everything)
	if flags != nil {
		if err := cfg.MergeFromFlags(flags); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		cfg.Inputs = append([]string(nil), args...)
	}

	// Validate final configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	if err := LoadConfigFile(path, c); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	c.Sources = append(c.Sources, path)
	return nil
}
