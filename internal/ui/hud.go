package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const hudPadding = 6

// HUD is a block of status lines over a translucent panel.
type HUD struct {
	X, Y      int
	LineStep  int
	face      font.Face
	textColor color.Color
	bgColor   color.Color
	lines     []string
}

// NewHUD creates a HUD drawn with face at (x, y).
func NewHUD(face font.Face, x, y, lineStep int, textColor color.Color) *HUD {
	return &HUD{
		X:         x,
		Y:         y,
		LineStep:  lineStep,
		face:      face,
		textColor: textColor,
		bgColor:   color.RGBA{R: 25, G: 35, B: 45, A: 200},
	}
}

// SetLines replaces the displayed text.
func (h *HUD) SetLines(lines ...string) {
	h.lines = append(h.lines[:0], lines...)
}

func (h *HUD) Draw(screen *ebiten.Image) {
	if len(h.lines) == 0 {
		return
	}

	width := 0
	for _, line := range h.lines {
		if w := text.BoundString(h.face, line).Dx(); w > width {
			width = w
		}
	}
	ascent := h.face.Metrics().Ascent.Ceil()
	height := h.LineStep * len(h.lines)
	vector.DrawFilledRect(screen,
		float32(h.X-hudPadding), float32(h.Y-ascent-hudPadding),
		float32(width+2*hudPadding), float32(height+hudPadding),
		h.bgColor, true)

	for i, line := range h.lines {
		text.Draw(screen, line, h.face, h.X, h.Y+i*h.LineStep, h.textColor)
	}
}
