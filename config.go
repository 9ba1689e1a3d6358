package canopy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WindowConfig describes the host window. Only Run consumes it; the engine
// itself learns the window size per frame through SetWindowSize.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Config holds engine-wide settings. PixelsPerUnit is fixed once the engine
// is created and is handed to every component that converts units.
type Config struct {
	// PixelsPerUnit is the number of screen pixels per world unit at zoom 1.
	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
	// PixelSnap rounds camera and object world positions to the nearest
	// 1/PixelsPerUnit before projection.
	PixelSnap bool `yaml:"pixel_snap"`
	// ClearColor fills the backdrop at the start of each draw pass.
	ClearColor Color `yaml:"-"`
	// ClearColorName is the YAML form of ClearColor (color name or hex).
	// NewEngine resolves it when ClearColor is left zero.
	ClearColorName string `yaml:"clear_color"`

	Window WindowConfig `yaml:"window"`
	Debug  bool         `yaml:"debug"`

	// ScriptDirs are watched for .tengo changes when WatchScripts is set.
	ScriptDirs   []string `yaml:"script_dirs"`
	WatchScripts bool     `yaml:"watch_scripts"`
}

// DefaultConfig returns a Config with one pixel per world unit, no snapping,
// a black backdrop, and a 640x480 window.
func DefaultConfig() Config {
	return Config{
		PixelsPerUnit: 1,
		ClearColor:    ColorBlack,
		Window:        WindowConfig{Title: "canopy", Width: 640, Height: 480},
	}
}

// LoadConfig parses YAML on top of DefaultConfig. Missing keys keep their
// defaults.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("canopy: unmarshal config: %w", err)
	}
	if cfg.ClearColorName != "" {
		c, err := parseColor(cfg.ClearColorName)
		if err != nil {
			return Config{}, fmt.Errorf("canopy: config clear_color: %w", err)
		}
		cfg.ClearColor = c
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("canopy: load config %s: %w", path, err)
	}
	return LoadConfig(data)
}

func (c Config) validate() error {
	if c.PixelsPerUnit <= 0 {
		return fmt.Errorf("canopy: pixels_per_unit must be positive, got %v", c.PixelsPerUnit)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("canopy: window size must be non-negative, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}
