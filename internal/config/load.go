package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults merged with the file at path, or with the
// standard config file when path is empty. Command-line flags are ignored,
// so tools with their own flag sets can use it.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Assets.Workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("assets.workers must be positive, got %d", c.Assets.Workers))
	}
	if len(c.Assets.Models) == 0 {
		err = multierr.Append(err, errors.New("assets.models is empty"))
	}
	seen := make(map[string]bool, len(c.Assets.Models))
	for _, m := range c.Assets.Models {
		if m.ID == "" {
			err = multierr.Append(err, errors.New("assets.models entry with empty id"))
			continue
		}
		if seen[m.ID] {
			err = multierr.Append(err, fmt.Errorf("duplicate model id %q", m.ID))
		}
		seen[m.ID] = true
	}
	if c.Session.Model != "" && len(seen) > 0 && !seen[c.Session.Model] {
		err = multierr.Append(err, fmt.Errorf("session.model %q is not in assets.models", c.Session.Model))
	}
	if c.Session.Light < 0 {
		err = multierr.Append(err, fmt.Errorf("session.light must not be negative, got %d", c.Session.Light))
	}
	if !c.Session.Mode.Valid() {
		err = multierr.Append(err, fmt.Errorf("session.mode %v is unknown", c.Session.Mode))
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
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
		return filepath.Join(home, "Library", "Application Support", "PRTRelight")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PRTRelight")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "prt-relight")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "prt-relight")
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
