package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"gaze-heatmap/internal/config"
	"gaze-heatmap/internal/event"
	"gaze-heatmap/internal/state"
)

var (
	_ state.State[*ebiten.Image] = (*LiveState)(nil)
	_ state.State[*ebiten.Image] = (*PausedState)(nil)
)

const crosshairSize = 8

// LiveState streams the cursor into the painter while the surface is looked at.
type LiveState struct {
	v *Viewer
}

func (s *LiveState) Enter() {}
func (s *LiveState) Exit()  {}

func (s *LiveState) Update(deltaTime float64) {
	v := s.v
	if !v.target.LookedAt() {
		return
	}
	if !v.cfg.Follow && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	hit := v.surface.HitAt(float64(v.cursorX), float64(v.cursorY))
	v.dispatcher.Dispatch(event.Event{Type: event.LookAt, Data: hit})
}

func (s *LiveState) Draw(screen *ebiten.Image) {
	v := s.v
	if !v.target.LookedAt() {
		return
	}
	x, y := float32(v.cursorX), float32(v.cursorY)
	vector.StrokeLine(screen, x-crosshairSize, y, x+crosshairSize, y, 1, config.LookingColor, true)
	vector.StrokeLine(screen, x, y-crosshairSize, x, y+crosshairSize, 1, config.LookingColor, true)
}

// PausedState ignores the gaze stream and dims the window.
type PausedState struct {
	v *Viewer
}

func (s *PausedState) Enter()                   {}
func (s *PausedState) Exit()                    {}
func (s *PausedState) Update(deltaTime float64) {}

func (s *PausedState) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, config.ScreenWidth, config.ScreenHeight, color.RGBA{0, 0, 0, 96}, false)

	const msg = "PAUSED - press L to resume"
	face := basicfont.Face7x13
	b := text.BoundString(face, msg)
	text.Draw(screen, msg, face, (config.ScreenWidth-b.Dx())/2, config.ScreenHeight-config.HUDMarginY, config.TextLightColor)
}
