// Package config loads and saves the viewer's settings file,
// ~/.config/opentracedie/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/compositor"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/engine"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/highlight"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

// LockTimeout bounds how long Load and Save wait for another process.
var LockTimeout = 5 * time.Second

// ViewportConfig is the window and coordinate geometry.
type ViewportConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	ViewSize   float64 `yaml:"view_size"`
	LogicalMin float64 `yaml:"logical_min"`
	LogicalMax float64 `yaml:"logical_max"`
	InvertY    bool    `yaml:"invert_y"`
	CanvasSize int     `yaml:"canvas_size"`

	// FixedExtent makes logical_min and logical_max win over the extent a
	// layout file declares.
	FixedExtent bool `yaml:"fixed_extent,omitempty"`
}

// ZoomConfig holds the zoom limits.
type ZoomConfig struct {
	Max       float64 `yaml:"max"`
	Step      float64 `yaml:"step"`
	CloseUp   float64 `yaml:"close_up"`
	FitMargin float64 `yaml:"fit_margin"`
}

// Config is the in-memory form of config.yaml.
type Config struct {
	Viewport      ViewportConfig `yaml:"viewport"`
	Zoom          ZoomConfig     `yaml:"zoom"`
	PulseInterval time.Duration  `yaml:"pulse_interval"`
	HitBatch      int            `yaml:"hit_batch"`
	LenientLinks  bool           `yaml:"lenient_links"`
	Theme         string         `yaml:"theme"`
	HiddenLayers  []int          `yaml:"hidden_layers,omitempty"`
	LastLayout    string         `yaml:"last_layout,omitempty"`
}

// Dir returns the directory holding the settings file.
func Dir() (string, error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "OpenTraceDie"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "opentracedie"), nil
}

// Path returns the settings file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the settings used when no file exists.
func Default() *Config {
	vc := viewport.DefaultConfig()
	return &Config{
		Viewport: ViewportConfig{
			Width:      vc.ViewportWidth,
			Height:     vc.ViewportHeight,
			ViewSize:   vc.ViewSize,
			LogicalMin: vc.LogicalMin,
			LogicalMax: vc.LogicalMax,
			InvertY:    vc.InvertY,
			CanvasSize: vc.CanvasSize,
		},
		Zoom: ZoomConfig{
			Max:       vc.ZoomMax,
			Step:      vc.ZoomStep,
			CloseUp:   vc.CloseUpZoom,
			FitMargin: vc.FitMargin,
		},
		PulseInterval: highlight.DefaultInterval,
		HitBatch:      engine.DefaultHitBatch,
		Theme:         compositor.ThemeNames[compositor.ThemeClassic],
	}
}

// ViewportConfig converts the settings to viewport geometry.
func (c *Config) ViewportConfig() viewport.Config {
	return viewport.Config{
		LogicalMin:     c.Viewport.LogicalMin,
		LogicalMax:     c.Viewport.LogicalMax,
		ViewSize:       c.Viewport.ViewSize,
		ViewportWidth:  c.Viewport.Width,
		ViewportHeight: c.Viewport.Height,
		ZoomMax:        c.Zoom.Max,
		ZoomStep:       c.Zoom.Step,
		CloseUpZoom:    c.Zoom.CloseUp,
		FitMargin:      c.Zoom.FitMargin,
		CanvasSize:     c.Viewport.CanvasSize,
		InvertY:        c.Viewport.InvertY,
	}
}

// ColorTheme resolves the theme name, falling back to the classic palette.
func (c *Config) ColorTheme() compositor.ColorTheme {
	t, _ := compositor.ThemeByName(c.Theme)
	return t
}

// EngineOptions builds engine options from the settings.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Config:        c.ViewportConfig(),
		Theme:         c.ColorTheme(),
		PulseInterval: c.PulseInterval,
		HitBatch:      c.HitBatch,
		LenientLinks:  c.LenientLinks,
		FixedExtent:   c.Viewport.FixedExtent,
	}
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if err := c.ViewportConfig().Validate(); err != nil {
		return err
	}
	if c.PulseInterval < 0 {
		return fmt.Errorf("pulse_interval %v must not be negative", c.PulseInterval)
	}
	return nil
}

// Load reads the settings file, returning defaults when it does not exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads settings from path under a shared lock. Fields missing
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(filepath.Dir(path)); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	unlock, err := acquire(path, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the settings file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path under an exclusive lock, replacing the file
// atomically.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	unlock, err := acquire(path, false)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cannot replace config %s: %w", path, err)
	}
	return nil
}

// acquire takes the lock file next to path, shared for readers and
// exclusive for writers, retrying until LockTimeout.
func acquire(path string, shared bool) (func(), error) {
	l := flock.New(path + ".lock")
	deadline := time.Now().Add(LockTimeout)
	for {
		var locked bool
		var err error
		if shared {
			locked, err = l.TryRLock()
		} else {
			locked, err = l.TryLock()
		}
		if err != nil {
			return nil, fmt.Errorf("cannot acquire config lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("config is locked by another process (lock: %s)", l.Path())
		}
		time.Sleep(50 * time.Millisecond)
	}
}
