package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagConvention = flag.String("convention", "", "Coordinate convention (none, flip_z)")
	flagUVMode     = flag.String("uv-mode", "", "UV transform override (auto, full, legacy)")
	flagWindowed   = flag.Bool("windowed", false, "Run the viewer windowed")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the viewer fullscreen")
	flagWidth      = flag.Int("width", 0, "Viewer window width")
	flagHeight     = flag.Int("height", 0, "Viewer window height")
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
	if *flagConvention != "" {
		cfg.Import.Convention = *flagConvention
	}
	if *flagUVMode != "" {
		cfg.Import.UVMode = *flagUVMode
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
