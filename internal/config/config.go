// Package config handles viewer configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

// Config holds all application settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Assets  AssetsConfig  `yaml:"assets"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ViewerConfig holds camera and render target settings.
type ViewerConfig struct {
	FOVDegrees     float32    `yaml:"fov_degrees"`
	CameraDistance float32    `yaml:"camera_distance"`
	Near           float32    `yaml:"near"`
	Far            float32    `yaml:"far"`
	ClearColor     [3]float32 `yaml:"clear_color"`
	// Offscreen render target size used by the inspector.
	TargetWidth  int `yaml:"target_width"`
	TargetHeight int `yaml:"target_height"`
}

// ModelEntry names one selectable asset.
type ModelEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// AssetsConfig describes where transfer assets come from.
type AssetsConfig struct {
	Dir     string        `yaml:"dir"`      // Local directory with <id>_<part>.json files
	BaseURL string        `yaml:"base_url"` // HTTP base URL; used when set
	Workers int           `yaml:"workers"`  // Parallel array fetches per load
	Timeout time.Duration `yaml:"timeout"`
	Models  []ModelEntry  `yaml:"models"`
}

// SessionConfig holds the initial viewer state.
type SessionConfig struct {
	Model    string     `yaml:"model"`
	Light    int        `yaml:"light"`
	Mode     prt.Mode   `yaml:"mode"`
	Rotation [3]float64 `yaml:"rotation_degrees"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultModels are the reference sample meshes.
func DefaultModels() []ModelEntry {
	return []ModelEntry{
		{ID: "0277", Label: "sample 1"},
		{ID: "0309", Label: "sample 2"},
		{ID: "141311548775566", Label: "sample 3"},
		{ID: "141511558561737", Label: "sample 4"},
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "PRT Relight",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Viewer: ViewerConfig{
			FOVDegrees:     75,
			CameraDistance: 0.7,
			Near:           0.1,
			Far:            1000,
			ClearColor:     [3]float32{0x77 / 255.0, 0x77 / 255.0, 0x77 / 255.0},
			TargetWidth:    768,
			TargetHeight:   768,
		},
		Assets: AssetsConfig{
			Dir:     "data",
			Workers: 6,
			Timeout: 30 * time.Second,
			Models:  DefaultModels(),
		},
		Session: SessionConfig{
			Model: "0277",
			Light: 0,
			Mode:  prt.ModeColor,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ModelIDs returns the configured model identifiers in order.
func (c *Config) ModelIDs() []string {
	ids := make([]string, len(c.Assets.Models))
	for i, m := range c.Assets.Models {
		ids[i] = m.ID
	}
	return ids
}
