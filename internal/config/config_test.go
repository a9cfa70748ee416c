package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	if cfg.Viewer.FOVDegrees != 75 {
		t.Errorf("expected fov 75, got %f", cfg.Viewer.FOVDegrees)
	}
	if cfg.Viewer.CameraDistance != 0.7 {
		t.Errorf("expected camera distance 0.7, got %f", cfg.Viewer.CameraDistance)
	}

	if len(cfg.Assets.Models) != 4 {
		t.Fatalf("expected 4 sample models, got %d", len(cfg.Assets.Models))
	}
	if cfg.Assets.Models[0].ID != "0277" || cfg.Assets.Models[3].Label != "sample 4" {
		t.Errorf("unexpected models: %+v", cfg.Assets.Models)
	}
	if cfg.Assets.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Assets.Timeout)
	}

	if cfg.Session.Model != "0277" {
		t.Errorf("expected initial model 0277, got %s", cfg.Session.Model)
	}
	if cfg.Session.Mode != prt.ModeColor {
		t.Errorf("expected color mode, got %s", cfg.Session.Mode)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

viewer:
  fov_degrees: 60
  camera_distance: 1.5

assets:
  base_url: "http://localhost:8000/assets"
  workers: 3
  timeout: 5s
  models:
    - id: bunny
      label: Bunny
    - id: "0309"
      label: sample 2

session:
  model: bunny
  light: 3
  mode: light
  rotation_degrees: [90, 0, 45]

logging:
  level: "debug"
  log_file: "prt.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || !cfg.Window.Fullscreen {
		t.Errorf("window not loaded: %+v", cfg.Window)
	}
	if cfg.Viewer.FOVDegrees != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Viewer.FOVDegrees)
	}
	// Unset keys keep their defaults.
	if cfg.Viewer.Near != 0.1 {
		t.Errorf("expected default near 0.1, got %f", cfg.Viewer.Near)
	}
	if cfg.Assets.BaseURL != "http://localhost:8000/assets" {
		t.Errorf("unexpected base url %s", cfg.Assets.BaseURL)
	}
	if cfg.Assets.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Assets.Timeout)
	}
	if ids := cfg.ModelIDs(); len(ids) != 2 || ids[0] != "bunny" || ids[1] != "0309" {
		t.Errorf("unexpected model ids %v", ids)
	}
	if cfg.Session.Model != "bunny" || cfg.Session.Light != 3 {
		t.Errorf("unexpected session %+v", cfg.Session)
	}
	if cfg.Session.Mode != prt.ModeLight {
		t.Errorf("expected light mode, got %s", cfg.Session.Mode)
	}
	if cfg.Session.Rotation != [3]float64{90, 0, 45} {
		t.Errorf("unexpected rotation %v", cfg.Session.Rotation)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "prt.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax": `
window:
  width: not a number
  invalid syntax here
`,
		"mode": `
session:
  mode: sepia
`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg []string
	}{
		{"zero workers", func(c *Config) { c.Assets.Workers = 0 }, []string{"workers"}},
		{"no models", func(c *Config) { c.Assets.Models = nil }, []string{"models is empty"}},
		{"duplicate", func(c *Config) {
			c.Assets.Models = append(c.Assets.Models, ModelEntry{ID: "0277"})
		}, []string{"duplicate model id"}},
		{"unknown session model", func(c *Config) { c.Session.Model = "teapot" }, []string{"teapot"}},
		{"several", func(c *Config) {
			c.Window.Width = 0
			c.Session.Light = -2
		}, []string{"window size", "session.light"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			for _, msg := range tt.wantMsg {
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("error %q should mention %q", err, msg)
				}
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.yaml")
	if err := os.WriteFile(path, []byte("assets:\n  dir: /srv/prt\n  workers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Assets.Dir != "/srv/prt" || cfg.Assets.Workers != 2 {
		t.Errorf("file values not applied: %+v", cfg.Assets)
	}
	if cfg.Session.Model != "0277" {
		t.Errorf("expected default model, got %s", cfg.Session.Model)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("assets:\n  workers: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected a validation error for zero workers")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "asset source flags",
			setup: func() {
				*flagAssets = "/srv/prt"
				*flagBaseURL = "https://example.com/prt"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Assets.Dir != "/srv/prt" {
					t.Errorf("expected dir /srv/prt, got %s", cfg.Assets.Dir)
				}
				if cfg.Assets.BaseURL != "https://example.com/prt" {
					t.Errorf("expected base url override, got %s", cfg.Assets.BaseURL)
				}
			},
			teardown: func() {
				*flagAssets = ""
				*flagBaseURL = ""
			},
		},
		{
			name: "session flags",
			setup: func() {
				*flagModel = "0309"
				*flagLight = 4
				*flagLightOnly = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Session.Model != "0309" {
					t.Errorf("expected model 0309, got %s", cfg.Session.Model)
				}
				if cfg.Session.Light != 4 {
					t.Errorf("expected light 4, got %d", cfg.Session.Light)
				}
				if cfg.Session.Mode != prt.ModeLight {
					t.Errorf("expected light mode, got %s", cfg.Session.Mode)
				}
			},
			teardown: func() {
				*flagModel = ""
				*flagLight = -1
				*flagLightOnly = false
			},
		},
		{
			name:  "light zero is an override",
			setup: func() { *flagLight = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Session.Light != 0 {
					t.Errorf("expected light 0, got %d", cfg.Session.Light)
				}
			},
			teardown: func() { *flagLight = -1 },
		},
		{
			name: "window flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
				*flagFullscreen = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
				*flagFullscreen = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			cfg.Session.Light = 2
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
session:
  light: 1
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag beats file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	// File beats default.
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
	if cfg.Session.Light != 1 {
		t.Errorf("expected light 1 from file, got %d", cfg.Session.Light)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Session.Mode = prt.ModeLight
	cfg.Session.Rotation = [3]float64{10, 20, 30}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "mode: light") {
		t.Errorf("mode should be saved by name:\n%s", data)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatal(err)
	}
	if loaded.Session.Mode != prt.ModeLight || loaded.Session.Rotation != cfg.Session.Rotation {
		t.Errorf("session not preserved: %+v", loaded.Session)
	}
}

func TestSaveSession(t *testing.T) {
	t.Run("creates file with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new", "config.yaml")
		written, err := SaveSession(path, SessionConfig{Model: "0309", Light: 4, Mode: prt.ModeLight})
		if err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
		if written != path {
			t.Errorf("written to %q, want %q", written, path)
		}
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Session.Model != "0309" || cfg.Session.Light != 4 || cfg.Session.Mode != prt.ModeLight {
			t.Errorf("session: %+v", cfg.Session)
		}
	})

	t.Run("keeps other sections", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
window:
  width: 640
assets:
  dir: /srv/prt
  models:
    - id: bunny
    - id: dragon
session:
  model: bunny
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := SaveSession(path, SessionConfig{Model: "dragon", Rotation: [3]float64{0, 30, 0}}); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Window.Width != 640 || cfg.Assets.Dir != "/srv/prt" || len(cfg.Assets.Models) != 2 {
			t.Errorf("other sections changed: window %+v assets %+v", cfg.Window, cfg.Assets)
		}
		if cfg.Session.Model != "dragon" || cfg.Session.Rotation[1] != 30 {
			t.Errorf("session: %+v", cfg.Session)
		}
	})

	t.Run("rejects unknown model", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if _, err := SaveSession(path, SessionConfig{Model: "nope"}); err == nil {
			t.Fatal("expected validation error")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("invalid session should not be written, stat: %v", err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("window: [\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := SaveSession(path, SessionConfig{Model: "0277"}); err == nil {
			t.Error("expected parse error")
		}
	})
}
