package heatmap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/golang/geo/r2"
	"golang.org/x/sync/errgroup"

	"gaze-heatmap/pkg/render"
	"gaze-heatmap/pkg/scheduler"
)

// ErrInvalidUV is returned for non-finite sample coordinates.
var ErrInvalidUV = errors.New("heatmap: invalid uv")

// Quadrant is one sweep direction around the sample centre.
type Quadrant struct {
	PositiveX, PositiveY bool
}

// Quadrants in sweep order.
var Quadrants = [4]Quadrant{
	{PositiveX: true, PositiveY: true},
	{PositiveX: true, PositiveY: false},
	{PositiveX: false, PositiveY: true},
	{PositiveX: false, PositiveY: false},
}

// axis returns the step sign and the first offset for one axis. Negative sweeps start
// at 1 so the centre row and column are painted once.
func axis(positive bool) (sign, start int) {
	if positive {
		return 1, 0
	}
	return -1, 1
}

func (q Quadrant) String() string {
	sx, sy := "+", "+"
	if !q.PositiveX {
		sx = "-"
	}
	if !q.PositiveY {
		sy = "-"
	}
	return "(" + sx + "," + sy + ")"
}

// Painter paints gaze samples into a Buffer.
type Painter struct {
	buf   *Buffer
	ramp  render.ColorRamp
	cfg   Config
	sched *scheduler.Scheduler
	logf  func(format string, v ...interface{})
}

// NewPainter binds a painter to buf. A nil buffer is a caller error.
func NewPainter(buf *Buffer, ramp render.ColorRamp, cfg Config) *Painter {
	if buf == nil {
		panic("heatmap: painter requires a buffer")
	}
	return &Painter{
		buf:   buf,
		ramp:  ramp,
		cfg:   cfg,
		sched: scheduler.New(cfg.MaxPending),
		logf:  log.Printf,
	}
}

// SetLogger replaces the logger for errors of staggered paints, which have no caller
// to return to. Passing nil mutes them.
func (p *Painter) SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	p.logf = f
}

// Buffer returns the painted buffer.
func (p *Painter) Buffer() *Buffer { return p.buf }

// Config returns the painter settings.
func (p *Painter) Config() Config { return p.cfg }

// PixelCenter converts a UV coordinate to pixel space.
func (p *Painter) PixelCenter(uv r2.Point) r2.Point {
	return r2.Point{X: uv.X * float64(p.buf.width), Y: uv.Y * float64(p.buf.height)}
}

// prepare force-clears the buffer before its first paint.
func (p *Painter) prepare() {
	if p.buf.neverPainted {
		p.buf.Fill(render.Transparent)
		p.buf.neverPainted = false
	}
}

// SweepQuadrant accumulates one quadrant around a pixel-space centre and returns the
// number of pixels written.
func (p *Painter) SweepQuadrant(center r2.Point, q Quadrant) int {
	sx, startX := axis(q.PositiveX)
	sy, startY := axis(q.PositiveY)
	w, h := float64(p.buf.width), float64(p.buf.height)

	written := 0
	for dx := startX; dx < p.buf.width; dx++ {
		tx := center.X + float64(dx*sx)
		if tx < 0 || tx >= w {
			break
		}
		exhausted := false
		for dy := startY; dy < p.buf.height; dy++ {
			ty := center.Y + float64(dy*sy)
			if ty < 0 || ty >= h {
				break
			}
			delta := p.cfg.Delta(r2.Point{X: tx, Y: ty}.Sub(center).Norm())
			if delta < p.cfg.MinDelta {
				// Distance only grows from here, so a cold first cell ends the quadrant.
				exhausted = dy == startY
				break
			}
			p.accumulate(int(tx), int(ty), delta)
			written++
		}
		if exhausted {
			break
		}
	}
	return written
}

func (p *Painter) accumulate(x, y int, delta float64) {
	n := float64(p.buf.At(x, y).A) + delta
	n = math.Max(0, math.Min(1, n))
	p.buf.Set(x, y, p.ramp.At(n).WithAlpha(float32(n)))
}

func checkUV(uv r2.Point) error {
	if math.IsNaN(uv.X) || math.IsNaN(uv.Y) || math.IsInf(uv.X, 0) || math.IsInf(uv.Y, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidUV, uv)
	}
	return nil
}

// PaintAt paints one sample synchronously and commits.
func (p *Painter) PaintAt(uv r2.Point) error {
	if err := checkUV(uv); err != nil {
		return err
	}
	p.prepare()
	center := p.PixelCenter(uv)
	for _, q := range Quadrants {
		p.SweepQuadrant(center, q)
	}
	return p.buf.Commit()
}

// PaintAtParallel paints one sample with the four quadrants on separate goroutines.
// Quadrants cover disjoint pixels, so the result matches PaintAt.
func (p *Painter) PaintAtParallel(ctx context.Context, uv r2.Point) error {
	if err := checkUV(uv); err != nil {
		return err
	}
	p.prepare()
	center := p.PixelCenter(uv)

	g, ctx := errgroup.WithContext(ctx)
	for _, q := range Quadrants {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.SweepQuadrant(center, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parallel paint: %w", err)
	}
	return p.buf.Commit()
}

// Clear drops queued paint jobs and clears the buffer.
func (p *Painter) Clear() error {
	p.sched.Reset()
	return p.buf.Clear()
}
