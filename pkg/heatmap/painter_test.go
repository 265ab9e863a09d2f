package heatmap

import (
	"context"
	"errors"
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaze-heatmap/pkg/render"
	"gaze-heatmap/pkg/scheduler"
)

func testConfig(size int) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = size, size
	return cfg
}

func newTestPainter(cfg Config) *Painter {
	p := NewPainter(NewBuffer(cfg.Width, cfg.Height), render.DefaultRamp(), cfg)
	p.SetLogger(nil)
	return p
}

func TestPaintAtWideBrushCoversSmallBuffer(t *testing.T) {
	cfg := testConfig(4)
	cfg.BrushSpread = 1e6
	cfg.Amplitude = 1
	p := newTestPainter(cfg)

	center := p.PixelCenter(r2.Point{X: 0.5, Y: 0.5})
	assert.Equal(t, r2.Point{X: 2, Y: 2}, center)

	require.NoError(t, p.PaintAt(r2.Point{X: 0.5, Y: 0.5}))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Greater(t, p.Buffer().Intensity(x, y), 0.0, "pixel (%d,%d)", x, y)
		}
	}
}

func TestQuadrantsAreDisjoint(t *testing.T) {
	cfg := testConfig(4)
	cfg.BrushSpread = 1e6
	p := newTestPainter(cfg)
	p.prepare()

	total := 0
	for _, q := range Quadrants {
		total += p.SweepQuadrant(r2.Point{X: 2, Y: 2}, q)
	}
	assert.Equal(t, 16, total)
	assert.Equal(t, 16, p.Buffer().Painted())
}

func TestPaintAtThresholdLeavesColdPixelsUntouched(t *testing.T) {
	cfg := testConfig(4)
	cfg.BrushSpread = 1
	cfg.Amplitude = 1
	cfg.MinDelta = 0.5
	p := newTestPainter(cfg)

	require.NoError(t, p.PaintAt(r2.Point{X: 0.5, Y: 0.5}))

	assert.Equal(t, 1, p.Buffer().Painted(), "only the centre reaches interest 0.5")
	assert.InDelta(t, 0.5, p.Buffer().Intensity(2, 2), 1e-6)
}

func TestPaintAtStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := testConfig(24)
	cfg.BrushSpread = 4

	for i := 0; i < 200; i++ {
		p := newTestPainter(cfg)
		p.prepare()
		uv := r2.Point{X: rng.Float64()*1.2 - 0.1, Y: rng.Float64()*1.2 - 0.1}
		if i%10 == 0 {
			uv = r2.Point{X: float64(i%3) / 2, Y: 1}
		}

		written := 0
		for _, q := range Quadrants {
			written += p.SweepQuadrant(p.PixelCenter(uv), q)
		}
		// A write outside the buffer would be dropped by Set and break this equality.
		assert.Equal(t, written, p.Buffer().Painted(), "uv %v", uv)
	}
}

func TestPaintAtRespectsReach(t *testing.T) {
	cfg := testConfig(64)
	p := newTestPainter(cfg)
	reach := cfg.Reach()

	require.NoError(t, p.PaintAt(r2.Point{X: 0.5, Y: 0.5}))

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			d := math.Hypot(float64(x-32), float64(y-32))
			painted := p.Buffer().Intensity(x, y) > 0
			if d > reach {
				assert.False(t, painted, "(%d,%d) at %.2f px is beyond reach", x, y, d)
			}
			if d < reach-1e-9 {
				assert.True(t, painted, "(%d,%d) at %.2f px is within reach", x, y, d)
			}
		}
	}
}

func TestPaintAtAccumulatesMonotonically(t *testing.T) {
	cfg := testConfig(32)
	p := newTestPainter(cfg)
	uv := r2.Point{X: 0.25, Y: 0.75}

	prev := p.Buffer().Intensities()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.PaintAt(uv))
		cur := p.Buffer().Intensities()
		for y := range cur {
			for x := range cur[y] {
				require.GreaterOrEqual(t, cur[y][x], prev[y][x], "pixel (%d,%d) after paint %d", x, y, i)
			}
		}
		prev = cur
	}
	assert.InDelta(t, 5*0.5/DefaultAmplitude, p.Buffer().Intensity(8, 24), 1e-5)
}

func TestPaintAtClampsAndColours(t *testing.T) {
	cfg := testConfig(8)
	cfg.Amplitude = 0.1
	p := newTestPainter(cfg)

	require.NoError(t, p.PaintAt(r2.Point{X: 0.5, Y: 0.5}))

	c := p.Buffer().At(4, 4)
	assert.Equal(t, float32(1), c.A)
	want := render.DefaultRamp().At(1)
	assert.Equal(t, want.R, c.R)
	assert.Equal(t, want.G, c.G)
	assert.Equal(t, want.B, c.B)
}

func TestFirstPaintClearsStaleBuffer(t *testing.T) {
	cfg := testConfig(64)
	p := newTestPainter(cfg)
	stale := render.Color{G: 1, A: 1}

	p.Buffer().Set(0, 0, stale)
	require.NoError(t, p.PaintAt(r2.Point{X: 0.9, Y: 0.9}))
	assert.Equal(t, render.Transparent, p.Buffer().At(0, 0))
	assert.False(t, p.Buffer().NeverPainted())

	p.Buffer().Set(0, 0, stale)
	require.NoError(t, p.PaintAt(r2.Point{X: 0.9, Y: 0.9}))
	assert.Equal(t, stale, p.Buffer().At(0, 0), "only the first paint clears")

	require.NoError(t, p.Clear())
	assert.True(t, p.Buffer().NeverPainted())
	assert.Zero(t, p.Buffer().Painted())
}

func TestPaintAtRejectsNonFiniteUV(t *testing.T) {
	p := newTestPainter(testConfig(8))

	err := p.PaintAt(r2.Point{X: math.NaN(), Y: 0.5})
	assert.True(t, errors.Is(err, ErrInvalidUV))
	err = p.Enqueue(r2.Point{X: 0.5, Y: math.Inf(1)})
	assert.True(t, errors.Is(err, ErrInvalidUV))
	assert.True(t, p.Buffer().NeverPainted())
}

func TestPaintAtParallelMatchesSequential(t *testing.T) {
	cfg := testConfig(96)
	seq := newTestPainter(cfg)
	par := newTestPainter(cfg)

	for _, uv := range []r2.Point{{X: 0.5, Y: 0.5}, {X: 0.1, Y: 0.95}, {X: 0.52, Y: 0.47}, {X: 1, Y: 0}} {
		require.NoError(t, seq.PaintAt(uv))
		require.NoError(t, par.PaintAtParallel(context.Background(), uv))
	}
	if diff := cmp.Diff(seq.Buffer().Intensities(), par.Buffer().Intensities()); diff != "" {
		t.Errorf("parallel paint differs (-seq +par):\n%s", diff)
	}
}

func TestPaintAtParallelHonoursCancelledContext(t *testing.T) {
	p := newTestPainter(testConfig(16))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PaintAtParallel(ctx, r2.Point{X: 0.5, Y: 0.5})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, p.Buffer().Painted())
}

func TestEnqueueStaggersAndSerialisesPaints(t *testing.T) {
	cfg := testConfig(32)
	p := newTestPainter(cfg)
	commits := 0
	p.Buffer().AddUploader(UploaderFunc(func(*image.RGBA) error {
		commits++
		return nil
	}))

	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	require.True(t, p.Tick())
	// The first job has started, so this one queues behind it.
	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	assert.Equal(t, 2, p.Pending())

	for i := 1; i < JobSteps-1; i++ {
		require.True(t, p.Tick())
	}
	assert.Zero(t, commits, "commit is the last step")
	assert.InDelta(t, 0.5/DefaultAmplitude, p.Buffer().Intensity(16, 16), 1e-6)

	p.Tick()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 1, p.Pending())

	p.Tick() // second job: prepare only
	assert.InDelta(t, 0.5/DefaultAmplitude, p.Buffer().Intensity(16, 16), 1e-6)

	p.Flush()
	assert.Equal(t, 2, commits)
	assert.InDelta(t, 1/DefaultAmplitude, p.Buffer().Intensity(16, 16), 1e-6)
	assert.False(t, p.Tick())
}

func TestEnqueueBatchesWaitingSamples(t *testing.T) {
	cfg := testConfig(64)
	cfg.BrushSpread = 6
	uvs := []r2.Point{{X: 0.5, Y: 0.5}, {X: 0.2, Y: 0.7}, {X: 0.55, Y: 0.45}}

	p := newTestPainter(cfg)
	commits := 0
	p.Buffer().AddUploader(UploaderFunc(func(*image.RGBA) error {
		commits++
		return nil
	}))
	for _, uv := range uvs {
		require.NoError(t, p.Enqueue(uv))
	}
	assert.Equal(t, 1, p.Pending())
	assert.Equal(t, JobSteps, p.sched.Drain())
	assert.Equal(t, 1, commits)

	want := newTestPainter(cfg)
	for _, uv := range uvs {
		require.NoError(t, want.PaintAt(uv))
	}
	if diff := cmp.Diff(want.Buffer().Intensities(), p.Buffer().Intensities(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("batched paint differs from sequential paints (-want +got):\n%s", diff)
	}
}

func TestEnqueueBatchLimit(t *testing.T) {
	cfg := testConfig(16)
	cfg.MaxBatch = 2
	p := newTestPainter(cfg)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	}
	assert.Equal(t, 3, p.Pending())

	cfg.MaxBatch = 0
	p = newTestPainter(cfg)
	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	assert.Equal(t, 2, p.Pending())
}

// A sample every frame against one step per frame must not overflow the queue.
func TestEnqueueKeepsUpWithOneSamplePerTick(t *testing.T) {
	p := newTestPainter(testConfig(32))
	for i := 0; i < 60; i++ {
		require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}), "sample %d", i)
		p.Tick()
		assert.LessOrEqual(t, p.Pending(), 2)
	}
	p.Flush()
	assert.InDelta(t, 1, p.Buffer().Intensity(16, 16), 1e-6)
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	cfg := testConfig(16)
	cfg.MaxPending = 1
	p := newTestPainter(cfg)

	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	p.Tick()
	err := p.Enqueue(r2.Point{X: 0.2, Y: 0.2})
	assert.True(t, errors.Is(err, scheduler.ErrQueueFull))
	assert.Equal(t, 1, p.Pending())
}

func TestCommitErrorIsLogged(t *testing.T) {
	p := newTestPainter(testConfig(16))
	var logged []string
	p.SetLogger(func(format string, v ...interface{}) { logged = append(logged, format) })
	p.Buffer().AddUploader(UploaderFunc(func(*image.RGBA) error { return errors.New("gpu lost") }))

	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	p.Flush()
	assert.Equal(t, []string{"heatmap commit failed: %v"}, logged)
}

func TestClearDropsPendingJobs(t *testing.T) {
	p := newTestPainter(testConfig(16))
	require.NoError(t, p.Enqueue(r2.Point{X: 0.5, Y: 0.5}))
	p.Tick()
	p.Tick()

	require.NoError(t, p.Clear())
	assert.Zero(t, p.Pending())
	assert.Zero(t, p.Buffer().Painted())
}

func TestNewPainterRequiresBuffer(t *testing.T) {
	assert.Panics(t, func() { NewPainter(nil, render.DefaultRamp(), DefaultConfig()) })
}

func TestQuadrantString(t *testing.T) {
	assert.Equal(t, "(+,-)", Quadrants[1].String())
	assert.Equal(t, "(-,-)", Quadrants[3].String())
}
