package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over standard locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects settings the engine cannot clamp its way out of.
func (c *Config) validate() error {
	if c.Map.MinZoom > c.Map.MaxZoom {
		return fmt.Errorf("config: min_zoom %.1f above max_zoom %.1f", c.Map.MinZoom, c.Map.MaxZoom)
	}
	if c.Map.CacheTiles < 1 {
		return fmt.Errorf("config: cache_tiles must be positive, got %d", c.Map.CacheTiles)
	}
	if c.Map.FetchRetries < 0 {
		return fmt.Errorf("config: fetch_retries must not be negative, got %d", c.Map.FetchRetries)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Meridian")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Meridian")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meridian")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meridian")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
