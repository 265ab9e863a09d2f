// Package viewer is the interactive heatmap window. The mouse cursor stands in for
// the gaze ray: hovering the surface looks at it, holding the left button (or
// follow mode) streams LookAt samples into the painter.
package viewer

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"gaze-heatmap/internal/assets"
	"gaze-heatmap/internal/config"
	"gaze-heatmap/internal/event"
	"gaze-heatmap/internal/gaze"
	"gaze-heatmap/internal/monitoring"
	"gaze-heatmap/internal/report"
	"gaze-heatmap/internal/state"
	"gaze-heatmap/internal/ui"
	"gaze-heatmap/pkg/heatmap"
	"gaze-heatmap/pkg/render"
)

// Options configure a Viewer.
type Options struct {
	Config config.Config
	// Recorder receives every accepted sample. Optional.
	Recorder gaze.Recorder
	// SnapshotDir is where S saves PNG snapshots.
	SnapshotDir string
	// Shaders supplies the overlay shader; defaults to the built-in one.
	Shaders assets.ShaderRegistry
}

// Viewer implements ebiten.Game.
type Viewer struct {
	cfg         config.Config
	surface     gaze.ScreenSurface
	target      *gaze.Target
	dispatcher  *event.Dispatcher
	overlay     *Overlay
	sm          *state.StateMachine[*ebiten.Image]
	live        *LiveState
	paused      *PausedState
	hud         *ui.HUD
	indicator   *ui.StateIndicator
	snapshotDir string

	cursorX, cursorY int
	lastUpdateTime   time.Time
}

// New builds the viewer: buffer, painter, gaze target, overlay texture and states.
func New(opts Options) (*Viewer, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shaders := opts.Shaders
	if shaders == nil {
		shaders = assets.DefaultShaders()
	}

	ramp := render.BuildRamp(cfg.RampWidth)
	buf := heatmap.NewBuffer(cfg.Heatmap.Width, cfg.Heatmap.Height)
	painter := heatmap.NewPainter(buf, ramp, cfg.Heatmap)
	painter.SetLogger(func(format string, v ...interface{}) { monitoring.Logf(format, v...) })

	src, ok := shaders.Lookup(config.OverlayShader)
	if !ok {
		monitoring.Logf("Could not find %s shader, drawing overlay without it", config.OverlayShader)
	}
	overlay := NewOverlay(buf.Width(), buf.Height(), src, config.OverlayAlpha)
	buf.AddUploader(overlay)

	left := (config.ScreenWidth - config.SurfaceScreenWidth) / 2
	top := (config.ScreenHeight - config.SurfaceScreenHeight) / 2
	surface := gaze.ScreenSurface{
		Rect:           image.Rect(left, top, left+config.SurfaceScreenWidth, top+config.SurfaceScreenHeight),
		Transform:      cfg.Surface,
		PixelsPerMeter: config.PixelsPerMeter,
	}

	target := gaze.NewTarget(painter, cfg.Surface)
	target.SetRecorder(opts.Recorder)
	dispatcher := event.NewDispatcher()
	target.Subscribe(dispatcher)

	v := &Viewer{
		cfg:         cfg,
		surface:     surface,
		target:      target,
		dispatcher:  dispatcher,
		overlay:     overlay,
		sm:          state.NewStateMachine[*ebiten.Image](),
		hud:         ui.NewHUD(basicfont.Face7x13, config.HUDMarginX, config.HUDMarginY, config.HUDLineStep, config.TextLightColor),
		indicator:   ui.NewStateIndicator(float32(config.ScreenWidth-config.IndicatorOffsetX), float32(config.IndicatorOffsetX), float32(config.IndicatorRadius)),
		snapshotDir: opts.SnapshotDir,
	}
	v.live = &LiveState{v: v}
	v.paused = &PausedState{v: v}

	// Uploads the cleared buffer so the texture starts transparent.
	if err := painter.Clear(); err != nil {
		return nil, fmt.Errorf("initial clear: %w", err)
	}
	v.setLive(cfg.LiveInput)
	v.lastUpdateTime = time.Now()
	return v, nil
}

// Target returns the gaze target the viewer paints.
func (v *Viewer) Target() *gaze.Target { return v.target }

// Dispatcher returns the viewer's event bus.
func (v *Viewer) Dispatcher() *event.Dispatcher { return v.dispatcher }

func (v *Viewer) Update() error {
	now := time.Now()
	deltaTime := now.Sub(v.lastUpdateTime).Seconds()
	if deltaTime > config.MaxDeltaTime {
		deltaTime = config.MaxDeltaTime
	}
	v.lastUpdateTime = now

	v.cursorX, v.cursorY = ebiten.CursorPosition()
	v.target.SetLookedAt(v.surface.Contains(v.cursorX, v.cursorY))
	v.handleKeys()

	v.sm.Update(deltaTime)
	v.target.Painter().Tick()
	v.updateHUD()
	return nil
}

func (v *Viewer) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.dispatcher.Dispatch(event.Event{Type: event.ClearRequested})
	}
	clicked := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && v.indicator.IsClicked(v.cursorX, v.cursorY)
	if inpututil.IsKeyJustPressed(ebiten.KeyL) || clicked {
		v.indicator.HandleClick()
		v.setLive(!v.target.Live())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		mode := heatmap.UVPlanar
		if v.target.Mode() == heatmap.UVPlanar {
			mode = heatmap.UVRaycast
		}
		v.dispatcher.Dispatch(event.Event{Type: event.ModeToggled, Data: mode})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		v.saveSnapshot()
	}
}

func (v *Viewer) setLive(live bool) {
	v.dispatcher.Dispatch(event.Event{Type: event.LiveToggled, Data: live})
	if live {
		v.sm.SetState(v.live)
	} else {
		v.sm.SetState(v.paused)
	}
}

func (v *Viewer) saveSnapshot() {
	name := fmt.Sprintf("heatmap-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(v.snapshotDir, name)
	if err := report.WritePNG(path, v.target.Painter().Buffer().Snapshot()); err != nil {
		monitoring.Logf("save snapshot: %v", err)
		return
	}
	monitoring.Logf("Saved heatmap snapshot to %s", path)
}

func (v *Viewer) updateHUD() {
	status := "paused"
	if v.target.Live() {
		status = "live"
	}
	v.hud.SetLines(
		fmt.Sprintf("input: %s   uv: %s   pending: %d", status, v.target.Mode(), v.target.Painter().Pending()),
		fmt.Sprintf("samples: %d accepted, %d dropped", v.target.Accepted(), v.target.Dropped()),
		fmt.Sprintf("painted: %d px   fps: %.0f", v.target.Painter().Buffer().Painted(), ebiten.ActualFPS()),
		"[C] clear  [L] live  [M] uv mode  [S] save",
	)
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(config.BackgroundColor)

	r := v.surface.Rect
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), config.SurfaceColor, false)
	v.overlay.Draw(screen, r)
	vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), float32(config.StrokeWidth), config.SurfaceStrokeColor, true)

	v.sm.Draw(screen)
	v.hud.Draw(screen)

	indicatorColor := config.IdleColor
	switch {
	case !v.target.Live():
		indicatorColor = config.PausedColor
	case v.target.LookedAt():
		indicatorColor = config.LookingColor
	}
	v.indicator.Draw(screen, indicatorColor)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}
