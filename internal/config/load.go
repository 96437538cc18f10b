package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration with priority defaults < file < flags.
// ParseFlags must have been called.
func Load() (*Config, error) {
	cfg := Default()

	if path := ConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	} else if _, err := os.Stat("roomview.yaml"); err == nil {
		if err := loadFromFile(cfg, "roomview.yaml"); err != nil {
			return nil, fmt.Errorf("loading config from roomview.yaml: %w", err)
		}
	}

	applyFlags(cfg)
	cfg.Validate()
	return cfg, nil
}

// loadFromFile merges a YAML file into cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
