package heatmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateTransform means a hit cannot be mapped onto the surface. The sample
// should be dropped.
var ErrDegenerateTransform = errors.New("heatmap: degenerate surface transform")

var (
	axisUp    = r3.Vec{Y: 1}
	axisRight = r3.Vec{X: 1}

	uvBounds = r2.Rect{X: r1.Interval{Lo: 0, Hi: 1}, Y: r1.Interval{Lo: 0, Hi: 1}}
)

// Transform places a flat surface in the world. Rotation holds Euler angles in
// degrees: X is pitch, Y is yaw. The surface spans Scale on its local X and Y axes.
type Transform struct {
	Position r3.Vec `json:"position"`
	Scale    r3.Vec `json:"scale"`
	Rotation r3.Vec `json:"rotation"`
}

// Hit is one gaze sample on a surface. HasUV is set when a mesh raycast already
// produced texture coordinates.
type Hit struct {
	World r3.Vec
	UV    r2.Point
	HasUV bool
}

func finite(v ...float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func finiteVec(v r3.Vec) bool {
	return finite(v.X, v.Y, v.Z)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToLocal moves a world point into the surface frame: translate to the surface
// centre, undo yaw (surfaces face the viewer at 180°), then undo pitch.
func (t Transform) ToLocal(world r3.Vec) r3.Vec {
	p := r3.Sub(world, t.Position)
	p = r3.NewRotation(radians(-(t.Rotation.Y-180)), axisUp).Rotate(p)
	return r3.NewRotation(radians(t.Rotation.X), axisRight).Rotate(p)
}

// ToWorld is the inverse of ToLocal.
func (t Transform) ToWorld(local r3.Vec) r3.Vec {
	p := r3.NewRotation(radians(-t.Rotation.X), axisRight).Rotate(local)
	p = r3.NewRotation(radians(t.Rotation.Y-180), axisUp).Rotate(p)
	return r3.Add(p, t.Position)
}

// ProjectPlanar maps a world hit onto the surface plane and returns its UV. Points
// beyond the surface edge are clamped onto it.
func ProjectPlanar(hit r3.Vec, t Transform) (r2.Point, error) {
	half := r3.Scale(0.5, t.Scale)
	if !finiteVec(hit) || !finiteVec(t.Position) || !finiteVec(t.Rotation) || !finiteVec(half) {
		return r2.Point{}, fmt.Errorf("%w: non-finite input", ErrDegenerateTransform)
	}
	if half.X <= 0 || half.Y <= 0 {
		return r2.Point{}, fmt.Errorf("%w: half extent %v", ErrDegenerateTransform, half)
	}

	local := t.ToLocal(hit)
	uv := r2.Point{
		X: (clamp(local.X, -half.X, half.X) + half.X) / (2 * half.X),
		Y: (clamp(local.Y, -half.Y, half.Y) + half.Y) / (2 * half.Y),
	}
	if !finite(uv.X, uv.Y) {
		return r2.Point{}, fmt.Errorf("%w: uv %v", ErrDegenerateTransform, uv)
	}
	return uv, nil
}

// Resolve picks the UV for a hit. Raycast mode trusts the hit's own UV and falls back
// to the planar projection when the hit carries none.
func Resolve(hit Hit, t Transform, mode UVMode) (r2.Point, error) {
	if mode == UVRaycast && hit.HasUV {
		if !finite(hit.UV.X, hit.UV.Y) {
			return r2.Point{}, fmt.Errorf("%w: %v", ErrInvalidUV, hit.UV)
		}
		return uvBounds.ClampPoint(hit.UV), nil
	}
	return ProjectPlanar(hit.World, t)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
