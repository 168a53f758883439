package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Import.Convention != "flip_z" {
		t.Errorf("expected convention 'flip_z', got %s", cfg.Import.Convention)
	}
	if cfg.Import.UVMode != "auto" {
		t.Errorf("expected uv_mode 'auto', got %s", cfg.Import.UVMode)
	}
	if len(cfg.Import.LegacyGenerators) != 0 {
		t.Errorf("expected empty legacy generator list, got %v", cfg.Import.LegacyGenerators)
	}

	if cfg.Viewer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Viewer.Height)
	}
	if cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Viewer.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bifrost.yaml")

	yamlContent := `
import:
  convention: "none"
  uv_mode: "legacy"
  legacy_generators:
    - "MyExporter-0."

viewer:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

logging:
  level: "debug"
  log_file: "bifrost.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Import.Convention != "none" {
		t.Errorf("expected convention 'none', got %s", cfg.Import.Convention)
	}
	if cfg.Import.UVMode != "legacy" {
		t.Errorf("expected uv_mode 'legacy', got %s", cfg.Import.UVMode)
	}
	if len(cfg.Import.LegacyGenerators) != 1 || cfg.Import.LegacyGenerators[0] != "MyExporter-0." {
		t.Errorf("expected one custom legacy generator, got %v", cfg.Import.LegacyGenerators)
	}

	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Viewer.Height)
	}
	if !cfg.Viewer.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Viewer.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "bifrost.log" {
		t.Errorf("expected log file 'bifrost.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/bifrost.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
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

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "bifrost.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find bifrost.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "convention flag",
			setup: func() {
				*flagConvention = "none"
			},
			verify: func(cfg *Config) {
				if cfg.Import.Convention != "none" {
					t.Errorf("expected convention 'none', got %s", cfg.Import.Convention)
				}
			},
			teardown: func() {
				*flagConvention = ""
			},
		},
		{
			name: "uv mode flag",
			setup: func() {
				*flagUVMode = "full"
			},
			verify: func(cfg *Config) {
				if cfg.Import.UVMode != "full" {
					t.Errorf("expected uv_mode 'full', got %s", cfg.Import.UVMode)
				}
			},
			teardown: func() {
				*flagUVMode = ""
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Viewer.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Viewer.Width)
				}
				if cfg.Viewer.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bifrost.yaml")

	yamlContent := `
viewer:
  width: 1600
  height: 900
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

	// Width comes from the flag, height from the file.
	if cfg.Viewer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestImportConvertFunc(t *testing.T) {
	flipped := ImportConfig{Convention: "flip_z"}
	if got := flipped.ConvertFunc()([3]float32{1, 2, 3}); got != ([3]float32{1, 2, -3}) {
		t.Errorf("flip_z convert = %v, want Z negated", got)
	}

	identity := ImportConfig{Convention: "none"}
	if got := identity.ConvertFunc()([3]float32{1, 2, 3}); got != ([3]float32{1, 2, 3}) {
		t.Errorf("none convert = %v, want unchanged", got)
	}
}

func TestImportResolveUVMode(t *testing.T) {
	tests := []struct {
		name      string
		cfg       ImportConfig
		generator string
		want      gltfmesh.UVMode
	}{
		{"auto modern", ImportConfig{UVMode: "auto"}, "VRoid Studio-1.2.0", gltfmesh.UVModeFull},
		{"auto legacy", ImportConfig{UVMode: "auto"}, "VRoid Studio-0.13.1", gltfmesh.UVModeLegacy},
		{"forced full", ImportConfig{UVMode: "full"}, "VRoid Studio-0.13.1", gltfmesh.UVModeFull},
		{"forced legacy", ImportConfig{UVMode: "legacy"}, "VRoid Studio-1.2.0", gltfmesh.UVModeLegacy},
		{
			name:      "custom prefixes",
			cfg:       ImportConfig{UVMode: "auto", LegacyGenerators: []string{"MyExporter-0."}},
			generator: "MyExporter-0.4",
			want:      gltfmesh.UVModeLegacy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolveUVMode(tt.generator); got != tt.want {
				t.Errorf("ResolveUVMode(%q) = %v, want %v", tt.generator, got, tt.want)
			}
		})
	}
}
