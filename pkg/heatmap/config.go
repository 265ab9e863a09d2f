package heatmap

import (
	"errors"
	"fmt"
	"math"
)

// UVMode selects how a 3D hit is mapped to texture space.
type UVMode string

const (
	// UVRaycast uses the hit's surface UV when present and falls back to planar.
	UVRaycast UVMode = "raycast"
	// UVPlanar always projects the hit onto the surface plane.
	UVPlanar UVMode = "planar"
)

// Defaults. A default sample reaches about 42 px before its delta drops below
// DefaultMinDelta.
const (
	DefaultBrushSpread = 20.0 // pixels per logistic unit
	DefaultAmplitude   = 15.0
	DefaultMinDelta    = 0.001
	DefaultTextureSize = 1024
	DefaultMaxPending  = 8
	DefaultMaxBatch    = 16
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid heatmap config")

// Config holds the static per-surface painter settings.
type Config struct {
	BrushSpread float64 `json:"brush_spread"`
	Amplitude   float64 `json:"amplitude"`
	MinDelta    float64 `json:"min_delta"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	UVMode      UVMode  `json:"uv_mode"`
	// MaxPending bounds queued paint jobs; samples beyond it are dropped.
	MaxPending int `json:"max_pending"`
	// MaxBatch is how many samples may join a paint job that has not started yet.
	// Zero or one disables batching.
	MaxBatch int `json:"max_batch"`
}

// DefaultConfig returns the stock painter settings.
func DefaultConfig() Config {
	return Config{
		BrushSpread: DefaultBrushSpread,
		Amplitude:   DefaultAmplitude,
		MinDelta:    DefaultMinDelta,
		Width:       DefaultTextureSize,
		Height:      DefaultTextureSize,
		UVMode:      UVRaycast,
		MaxPending:  DefaultMaxPending,
		MaxBatch:    DefaultMaxBatch,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case !(c.BrushSpread > 0) || math.IsInf(c.BrushSpread, 0):
		return fmt.Errorf("%w: brush_spread must be positive, got %v", ErrInvalidConfig, c.BrushSpread)
	case !(c.Amplitude > 0) || math.IsInf(c.Amplitude, 0):
		return fmt.Errorf("%w: amplitude must be positive, got %v", ErrInvalidConfig, c.Amplitude)
	case !(c.MinDelta >= 0):
		return fmt.Errorf("%w: min_delta must not be negative, got %v", ErrInvalidConfig, c.MinDelta)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: texture size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.UVMode != UVRaycast && c.UVMode != UVPlanar:
		return fmt.Errorf("%w: unknown uv_mode %q", ErrInvalidConfig, c.UVMode)
	case c.MaxPending < 0:
		return fmt.Errorf("%w: max_pending must not be negative, got %d", ErrInvalidConfig, c.MaxPending)
	case c.MaxBatch < 0:
		return fmt.Errorf("%w: max_batch must not be negative, got %d", ErrInvalidConfig, c.MaxBatch)
	}
	return nil
}
