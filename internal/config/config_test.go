package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/compositor"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

func TestDefaultMatchesViewport(t *testing.T) {
	cfg := Default()
	if got := cfg.ViewportConfig(); got != viewport.DefaultConfig() {
		t.Errorf("ViewportConfig() = %+v, want %+v", got, viewport.DefaultConfig())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if cfg.ColorTheme() != compositor.ThemeClassic {
		t.Errorf("ColorTheme() = %v", cfg.ColorTheme())
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "config.yaml")},
		{"missing dir", filepath.Join(dir, "nope", "config.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(tt.path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if cfg.HitBatch != Default().HitBatch {
				t.Errorf("HitBatch = %d, want default", cfg.HitBatch)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Zoom.Max = 20
	cfg.PulseInterval = 250 * time.Millisecond
	cfg.HiddenLayers = []int{0, 5}
	cfg.Theme = "Muted"
	cfg.LastLayout = "/tmp/6502.chip"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Zoom.Max != 20 || got.PulseInterval != 250*time.Millisecond {
		t.Errorf("loaded %+v", got)
	}
	if len(got.HiddenLayers) != 2 || got.HiddenLayers[1] != 5 {
		t.Errorf("HiddenLayers = %v", got.HiddenLayers)
	}
	if got.ColorTheme() != compositor.ThemeMuted {
		t.Errorf("ColorTheme() = %v", got.ColorTheme())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "zoom:\n  max: 8\npulse_interval: 1s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Zoom.Max != 8 || cfg.Zoom.Step != 1.2 {
		t.Errorf("Zoom = %+v", cfg.Zoom)
	}
	if cfg.PulseInterval != time.Second {
		t.Errorf("PulseInterval = %v", cfg.PulseInterval)
	}
	if cfg.Viewport.Width != 800 {
		t.Errorf("Viewport.Width = %v", cfg.Viewport.Width)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "zoom: [1, 2"},
		{"bad zoom", "zoom:\n  max: 0.5\n"},
		{"bad duration", "pulse_interval: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
