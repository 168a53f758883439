// Package config handles import-pipeline configuration loading and
// management.
package config

import (
	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

// Config holds all tool settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds mesh decode settings.
type ImportConfig struct {
	// Convention selects the coordinate transform: "none" or "flip_z".
	Convention string `yaml:"convention"`
	// UVMode overrides generator detection: "auto", "full" or "legacy".
	UVMode string `yaml:"uv_mode"`
	// LegacyGenerators are generator-string prefixes treated as legacy
	// UV encoders. Empty uses the built-in list.
	LegacyGenerators []string `yaml:"legacy_generators"`
}

// ViewerConfig holds preview window settings.
type ViewerConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Convention: "flip_z",
			UVMode:     "auto",
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ConvertFunc maps the configured convention to a coordinate transform.
// Unknown values fall back to identity.
func (c *ImportConfig) ConvertFunc() gltfmesh.ConvertVec {
	if c.Convention == "flip_z" {
		return gltfmesh.ConvertFlipZ
	}
	return gltfmesh.ConvertNone
}

// ResolveUVMode returns the UV transform for an asset: the configured
// override when set, otherwise generator-prefix detection.
func (c *ImportConfig) ResolveUVMode(generator string) gltfmesh.UVMode {
	switch c.UVMode {
	case "full":
		return gltfmesh.UVModeFull
	case "legacy":
		return gltfmesh.UVModeLegacy
	default:
		return gltfmesh.ResolveUVMode(generator, c.LegacyGenerators)
	}
}
