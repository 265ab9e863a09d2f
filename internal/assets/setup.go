// Package assets generates the heatmap lookup texture and overlay material.
package assets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gaze-heatmap/internal/config"
	"gaze-heatmap/internal/monitoring"
	"gaze-heatmap/internal/report"
	"gaze-heatmap/pkg/render"
)

const (
	LookupTableFile = "HeatmapLookupTable.png"
	MaterialFile    = "HeatmapOverlayMaterial.json"
)

// ErrShaderNotFound is returned when the overlay shader is not registered. The lookup
// texture is still written.
var ErrShaderNotFound = errors.New("overlay shader not found")

//go:embed overlay.kage
var overlayKage []byte

// ShaderRegistry maps shader names to Kage sources.
type ShaderRegistry map[string][]byte

// DefaultShaders returns the built-in overlay shader.
func DefaultShaders() ShaderRegistry {
	return ShaderRegistry{config.OverlayShader: overlayKage}
}

// Lookup returns the source of a shader.
func (r ShaderRegistry) Lookup(name string) ([]byte, bool) {
	src, ok := r[name]
	return src, ok && len(src) > 0
}

// Material describes the overlay material: which shader draws the heatmap texture and
// at what opacity. MainTexture stays empty on disk; the painter's buffer is bound at
// runtime.
type Material struct {
	Shader      string  `json:"shader"`
	MainTexture *string `json:"main_texture"`
	LookupTable string  `json:"lookup_table"`
	Alpha       float64 `json:"alpha"`
}

// Setup writes the lookup texture for ramp into dir, then the overlay material. A
// missing shader is logged and aborts only the material step.
func Setup(dir string, ramp render.ColorRamp, shaders ShaderRegistry) error {
	lutPath := filepath.Join(dir, LookupTableFile)
	if err := report.WritePNG(lutPath, ramp.Image()); err != nil {
		return fmt.Errorf("write lookup texture: %w", err)
	}

	if _, ok := shaders.Lookup(config.OverlayShader); !ok {
		monitoring.Logf("Could not find %s shader. Make sure it is registered.", config.OverlayShader)
		return fmt.Errorf("%w: %s", ErrShaderNotFound, config.OverlayShader)
	}

	mat := Material{
		Shader:      config.OverlayShader,
		LookupTable: LookupTableFile,
		Alpha:       config.OverlayAlpha,
	}
	data, err := json.MarshalIndent(mat, "", "  ")
	if err != nil {
		return fmt.Errorf("encode material: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MaterialFile), data, 0644); err != nil {
		return fmt.Errorf("write material: %w", err)
	}

	monitoring.Logf("Created heatmap material and lookup texture in %s", dir)
	return nil
}

// LoadMaterial reads a material written by Setup.
func LoadMaterial(path string) (Material, error) {
	var mat Material
	data, err := os.ReadFile(path)
	if err != nil {
		return mat, fmt.Errorf("read material: %w", err)
	}
	if err := json.Unmarshal(data, &mat); err != nil {
		return mat, fmt.Errorf("decode material: %w", err)
	}
	return mat, nil
}
