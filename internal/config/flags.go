package config

import (
	"flag"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagAssets     = flag.String("assets", "", "Directory containing <model>_<part>.json files")
	flagBaseURL    = flag.String("base-url", "", "Fetch assets over HTTP from this base URL")
	flagModel      = flag.String("model", "", "Initial model id")
	flagLight      = flag.Int("light", -1, "Initial light preset index")
	flagLightOnly  = flag.Bool("light-only", false, "Start in light-only shading mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		cfg.Assets.Dir = *flagAssets
	}
	if *flagBaseURL != "" {
		cfg.Assets.BaseURL = *flagBaseURL
	}
	if *flagModel != "" {
		cfg.Session.Model = *flagModel
	}
	if *flagLight >= 0 {
		cfg.Session.Light = *flagLight
	}
	if *flagLightOnly {
		cfg.Session.Mode = prt.ModeLight
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
}
