// Package gaze binds a painted surface to gaze input events.
package gaze

import (
	"errors"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"gaze-heatmap/internal/event"
	"gaze-heatmap/internal/monitoring"
	"gaze-heatmap/pkg/heatmap"
)

// Recorder persists accepted gaze samples and clears, in the order they happened, so
// a session can be replayed.
type Recorder interface {
	RecordSample(uv r2.Point, world r3.Vec) error
	RecordClear() error
}

// Target is a surface that turns LookAt events into heatmap paints.
type Target struct {
	Transform heatmap.Transform

	painter  *heatmap.Painter
	recorder Recorder
	live     bool
	lookedAt bool
	mode     heatmap.UVMode
	accepted int
	dropped  int
}

// NewTarget creates a target painting into painter. Live input starts enabled and the
// UV mode comes from the painter's config.
func NewTarget(painter *heatmap.Painter, t heatmap.Transform) *Target {
	if painter == nil {
		panic("gaze: nil painter")
	}
	return &Target{
		Transform: t,
		painter:   painter,
		live:      true,
		mode:      painter.Config().UVMode,
	}
}

// SetRecorder installs r. A nil recorder disables recording.
func (t *Target) SetRecorder(r Recorder) { t.recorder = r }

// SetLookedAt marks whether the gaze ray currently rests on the surface.
func (t *Target) SetLookedAt(v bool) { t.lookedAt = v }

func (t *Target) LookedAt() bool            { return t.lookedAt }
func (t *Target) Live() bool                { return t.live }
func (t *Target) Mode() heatmap.UVMode      { return t.mode }
func (t *Target) Painter() *heatmap.Painter { return t.painter }

// Accepted and Dropped count LookAt samples since the last clear.
func (t *Target) Accepted() int { return t.accepted }
func (t *Target) Dropped() int  { return t.dropped }

// Subscribe registers the target for all gaze events on d.
func (t *Target) Subscribe(d *event.Dispatcher) {
	for _, et := range []event.EventType{event.LookAt, event.ClearRequested, event.LiveToggled, event.ModeToggled} {
		d.Subscribe(et, t)
	}
}

// OnEvent handles gaze events.
func (t *Target) OnEvent(e event.Event) {
	switch e.Type {
	case event.LookAt:
		hit, ok := e.Data.(heatmap.Hit)
		if !ok {
			monitoring.Logf("gaze: LookAt without hit data: %T", e.Data)
			return
		}
		t.Look(hit)
	case event.ClearRequested:
		if err := t.Clear(); err != nil {
			monitoring.Logf("gaze: clear failed: %v", err)
		}
	case event.LiveToggled:
		if v, ok := e.Data.(bool); ok {
			t.live = v
		} else {
			t.live = !t.live
		}
	case event.ModeToggled:
		if m, ok := e.Data.(heatmap.UVMode); ok {
			t.mode = m
		}
	}
}

// Look handles one gaze hit. Nothing happens unless live input is on and the surface is
// looked at. Samples that cannot be projected or do not fit the paint queue are logged
// and dropped.
func (t *Target) Look(hit heatmap.Hit) {
	if !t.live || !t.lookedAt {
		return
	}

	uv, err := heatmap.Resolve(hit, t.Transform, t.mode)
	if err != nil {
		if errors.Is(err, heatmap.ErrDegenerateTransform) {
			monitoring.Logf("gaze: cannot project hit %v: %v", hit.World, err)
		} else {
			monitoring.Logf("gaze: resolve failed: %v", err)
		}
		t.dropped++
		return
	}

	if err := t.painter.Enqueue(uv); err != nil {
		monitoring.Logf("gaze: %v", err)
		t.dropped++
		return
	}
	t.accepted++

	if t.recorder != nil {
		if err := t.recorder.RecordSample(uv, hit.World); err != nil {
			monitoring.Logf("gaze: record sample: %v", err)
		}
	}
}

// Clear discards pending paints, resets the heatmap and records the clear.
func (t *Target) Clear() error {
	t.accepted, t.dropped = 0, 0
	if err := t.painter.Clear(); err != nil {
		return err
	}
	if t.recorder != nil {
		if err := t.recorder.RecordClear(); err != nil {
			monitoring.Logf("gaze: record clear: %v", err)
		}
	}
	return nil
}
