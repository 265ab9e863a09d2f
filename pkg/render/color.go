package render

import (
	"image/color"
	"math"
)

// Color is a straight-alpha float colour with channels in [0,1].
type Color struct {
	R, G, B, A float32
}

// Transparent is the cleared heatmap pixel.
var Transparent = Color{}

// Ramp endpoints: blue -> cyan -> yellow -> red, alpha 0.5 -> 0.6 -> 0.8 -> 1.0.
var (
	RampBlue   = Color{0, 0, 1, 0.5}
	RampCyan   = Color{0, 1, 1, 0.6}
	RampYellow = Color{1, 1, 0, 0.8}
	RampRed    = Color{1, 0, 0, 1.0}
)

// Lerp linearly interpolates every channel. t is clamped to [0,1].
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	f := float32(t)
	return Color{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
		A: a.A + (b.A-a.A)*f,
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// NRGBA converts to an 8-bit straight-alpha colour, rounding each channel.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: toByte(c.R),
		G: toByte(c.G),
		B: toByte(c.B),
		A: toByte(c.A),
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func toByte(v float32) uint8 {
	return uint8(math.Round(clamp01(float64(v)) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
