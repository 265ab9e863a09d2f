package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"gaze-heatmap/pkg/heatmap"
)

const (
	ScreenWidth  = 1200
	ScreenHeight = 900

	// Surface rectangle on screen; one world metre is PixelsPerMeter screen pixels.
	SurfaceScreenWidth  = 720
	SurfaceScreenHeight = 720
	PixelsPerMeter      = 360.0

	MaxDeltaTime = 0.06
	HUDMarginX   = 12
	HUDMarginY   = 20
	HUDLineStep  = 16

	IndicatorOffsetX = 30
	IndicatorRadius  = 10.0

	OverlayAlpha   = 0.7
	OverlayShader  = "Custom/HeatmapOverlay"
	maxConfigBytes = 1 << 20
)

var (
	BackgroundColor    = color.RGBA{20, 20, 30, 255}
	SurfaceColor       = color.RGBA{90, 90, 100, 255}
	SurfaceStrokeColor = color.RGBA{240, 240, 240, 255}
	TextLightColor     = color.RGBA{240, 240, 240, 255}
	LookingColor       = color.RGBA{50, 205, 50, 255}
	IdleColor          = color.RGBA{150, 70, 70, 220}
	PausedColor        = color.RGBA{70, 130, 180, 220}
	StrokeWidth        = 2.0
)

// Config is the on-disk settings file. Fields missing from the file keep their
// defaults.
type Config struct {
	Heatmap heatmap.Config `json:"heatmap"`
	// Surface is the painted object's placement in the world.
	Surface heatmap.Transform `json:"surface"`
	// LiveInput enables painting from the gaze stream.
	LiveInput bool `json:"live_input"`
	// Follow paints whenever the cursor is over the surface, without a held button.
	Follow bool `json:"follow"`
	// RampWidth is the number of lookup table entries.
	RampWidth int `json:"ramp_width"`
}

// Default returns the built-in settings: a 2x2 m surface facing the viewer.
func Default() Config {
	return Config{
		Heatmap: heatmap.DefaultConfig(),
		Surface: heatmap.Transform{
			Scale:    r3.Vec{X: SurfaceScreenWidth / PixelsPerMeter, Y: SurfaceScreenHeight / PixelsPerMeter, Z: 1},
			Rotation: r3.Vec{Y: 180},
		},
		LiveInput: true,
		RampWidth: 256,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := c.Heatmap.Validate(); err != nil {
		return err
	}
	if c.RampWidth < 2 {
		return fmt.Errorf("%w: ramp_width must be at least 2, got %d", heatmap.ErrInvalidConfig, c.RampWidth)
	}
	return nil
}

// Load reads a JSON settings file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigBytes {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigBytes)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", clean, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config %s not found: %w", path, err)
	}
	return cfg, err
}
