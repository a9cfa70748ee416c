package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where SaveSession writes when no path is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SaveSession replaces the session section of the config file at path and
// returns the path written. An empty path means the file Load would read,
// or DefaultPath when there is none. The other sections keep the file's
// values so command-line overrides are never written back.
func SaveSession(path string, s SessionConfig) (string, error) {
	if path == "" {
		path = ConfigPath()
	}
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	cfg.Session = s
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveTo writes the config to path through a temporary file, so a failed
// write never leaves a truncated config behind.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
