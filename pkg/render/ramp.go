package render

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultRampWidth is the width of the lookup texture.
const DefaultRampWidth = 256

// Segment thresholds along the ramp parameter t.
const (
	rampSeg1 = 0.33 // blue to cyan
	rampSeg2 = 0.66 // cyan to yellow
	// remainder (0.34): yellow to red
)

// ColorRamp maps a normalized heat value to a display colour. Immutable once built.
type ColorRamp []Color

// BuildRamp builds the blue-cyan-yellow-red heat ramp with the given number of entries.
// Widths below 2 are raised to 2 so both ends of the ramp are present.
func BuildRamp(width int) ColorRamp {
	if width < 2 {
		width = 2
	}
	ramp := make(ColorRamp, width)
	for i := range ramp {
		t := float64(i) / float64(width-1)
		switch {
		case t < rampSeg1:
			ramp[i] = blend(RampBlue, RampCyan, t/rampSeg1)
		case t < rampSeg2:
			ramp[i] = blend(RampCyan, RampYellow, (t-rampSeg1)/(rampSeg2-rampSeg1))
		default:
			ramp[i] = blend(RampYellow, RampRed, (t-rampSeg2)/(1-rampSeg2))
		}
	}
	return ramp
}

var defaultRamp = BuildRamp(DefaultRampWidth)

// DefaultRamp returns the shared 256-entry ramp.
func DefaultRamp() ColorRamp {
	return defaultRamp
}

// blend interpolates RGB through go-colorful and alpha separately.
func blend(a, b Color, t float64) Color {
	t = clamp01(t)
	ca := colorful.Color{R: float64(a.R), G: float64(a.G), B: float64(a.B)}
	cb := colorful.Color{R: float64(b.R), G: float64(b.G), B: float64(b.B)}
	c := ca.BlendRgb(cb, t)
	return Color{
		R: float32(c.R),
		G: float32(c.G),
		B: float32(c.B),
		A: a.A + (b.A-a.A)*float32(t),
	}
}

// Index returns the ramp index for an intensity: round(clamp(v,0,1) * (len-1)).
func (r ColorRamp) Index(intensity float64) int {
	return int(math.Round(clamp01(intensity) * float64(len(r)-1)))
}

// At returns the ramp colour for an intensity in [0,1].
func (r ColorRamp) At(intensity float64) Color {
	if len(r) == 0 {
		return RampBlue
	}
	return r[r.Index(intensity)]
}

// Colors returns the ramp as a colour slice, which lets it serve as a plot palette.
func (r ColorRamp) Colors() []color.Color {
	out := make([]color.Color, len(r))
	for i, c := range r {
		out[i] = c.NRGBA()
	}
	return out
}

// Image renders the ramp as a len(r)x1 lookup texture.
func (r ColorRamp) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(r), 1))
	for i, c := range r {
		img.SetNRGBA(i, 0, c.NRGBA())
	}
	return img
}
