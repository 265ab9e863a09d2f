package gaze

import (
	"image"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"gaze-heatmap/pkg/heatmap"
)

// ScreenSurface is the on-screen rectangle that stands in for a surface in the
// world. The cursor plays the gaze ray: a cursor position over Rect becomes a hit on
// the surface plane.
type ScreenSurface struct {
	Rect           image.Rectangle
	Transform      heatmap.Transform
	PixelsPerMeter float64
}

// Contains reports whether the screen point is over the surface.
func (s ScreenSurface) Contains(x, y int) bool {
	return image.Pt(x, y).In(s.Rect)
}

// Local converts a screen point to surface-local metres. Screen Y grows downwards,
// local Y grows upwards.
func (s ScreenSurface) Local(x, y float64) r3.Vec {
	cx := float64(s.Rect.Min.X+s.Rect.Max.X) / 2
	cy := float64(s.Rect.Min.Y+s.Rect.Max.Y) / 2
	return r3.Vec{
		X: (x - cx) / s.PixelsPerMeter,
		Y: (cy - y) / s.PixelsPerMeter,
	}
}

// HitAt builds the gaze hit for a cursor position. The hit carries both the world
// point and the rectangle's own UV, like a mesh raycast would.
func (s ScreenSurface) HitAt(x, y float64) heatmap.Hit {
	w, h := float64(s.Rect.Dx()), float64(s.Rect.Dy())
	hit := heatmap.Hit{World: s.Transform.ToWorld(s.Local(x, y))}
	if w > 0 && h > 0 {
		hit.UV = r2.Point{
			X: (x - float64(s.Rect.Min.X)) / w,
			Y: 1 - (y-float64(s.Rect.Min.Y))/h,
		}
		hit.HasUV = true
	}
	return hit
}

// ScreenPoint maps a UV back onto the screen rectangle.
func (s ScreenSurface) ScreenPoint(uv r2.Point) (float64, float64) {
	w, h := float64(s.Rect.Dx()), float64(s.Rect.Dy())
	return float64(s.Rect.Min.X) + uv.X*w, float64(s.Rect.Min.Y) + (1-uv.Y)*h
}
