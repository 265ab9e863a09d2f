package heatmap

import (
	"gonum.org/v1/gonum/spatial/r3"

	"gaze-heatmap/pkg/render"
)

// ParticleData is one sample of the particle-based heatmap: a coloured disc placed in
// the world instead of pixels in a texture.
type ParticleData struct {
	Position     r3.Vec       `json:"position"`
	RadiusMeters float64      `json:"radius_m"`
	Intensity    float64      `json:"intensity"`
	Color        render.Color `json:"color"`
	Rotation     r3.Vec       `json:"rotation"`
}
