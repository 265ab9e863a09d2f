package viewer

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"gaze-heatmap/internal/monitoring"
)

// Overlay is the GPU side of the heatmap: a texture refreshed on every commit and the
// shader that blends it over the surface.
type Overlay struct {
	tex    *ebiten.Image
	shader *ebiten.Shader
	alpha  float32
}

// NewOverlay allocates a w×h texture and compiles the Kage overlay shader. If the
// shader does not compile the overlay falls back to plain alpha blending.
func NewOverlay(w, h int, shaderSrc []byte, alpha float64) *Overlay {
	o := &Overlay{
		tex:   ebiten.NewImage(w, h),
		alpha: float32(alpha),
	}
	if len(shaderSrc) > 0 {
		shader, err := ebiten.NewShader(shaderSrc)
		if err != nil {
			monitoring.Logf("overlay shader: %v", err)
		} else {
			o.shader = shader
		}
	}
	return o
}

// Upload copies a committed buffer snapshot into the texture.
func (o *Overlay) Upload(img *image.RGBA) error {
	o.tex.WritePixels(img.Pix)
	return nil
}

// Draw stretches the texture over rect.
func (o *Overlay) Draw(screen *ebiten.Image, rect image.Rectangle) {
	w, h := o.tex.Bounds().Dx(), o.tex.Bounds().Dy()
	sx := float64(rect.Dx()) / float64(w)
	sy := float64(rect.Dy()) / float64(h)

	if o.shader == nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(sx, sy)
		op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
		op.ColorScale.ScaleAlpha(o.alpha)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(o.tex, op)
		return
	}

	op := &ebiten.DrawRectShaderOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.Images[0] = o.tex
	op.Uniforms = map[string]any{
		"Alpha": o.alpha,
	}
	screen.DrawRectShader(w, h, o.shader, op)
}
