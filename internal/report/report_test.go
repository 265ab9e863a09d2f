package report

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"gaze-heatmap/pkg/heatmap"
	"gaze-heatmap/pkg/render"
)

func paintedBuffer(t *testing.T, size int) *heatmap.Buffer {
	t.Helper()
	cfg := heatmap.DefaultConfig()
	cfg.Width, cfg.Height = size, size
	p := heatmap.NewPainter(heatmap.NewBuffer(size, size), render.DefaultRamp(), cfg)
	require.NoError(t, p.PaintAt(r2.Point{X: 0.5, Y: 0.5}))
	return p.Buffer()
}

func TestWritePNGAndBMP(t *testing.T) {
	dir := t.TempDir()
	img := paintedBuffer(t, 64).Snapshot()

	pngPath := filepath.Join(dir, "out", "heatmap.png")
	require.NoError(t, WritePNG(pngPath, img))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	decoded, err := png.Decode(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	bmpPath := filepath.Join(dir, "heatmap.bmp")
	require.NoError(t, WriteBMP(bmpPath, img))
	f, err = os.Open(bmpPath)
	require.NoError(t, err)
	cfg, err := bmp.DecodeConfig(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}

func TestScaleLookupTexture(t *testing.T) {
	lut := render.DefaultRamp().Image()
	big := Scale(lut, 512, 16)

	assert.Equal(t, image.Rect(0, 0, 512, 16), big.Bounds())
	left := big.RGBAAt(0, 8)
	right := big.RGBAAt(511, 8)
	assert.Equal(t, lut.At(0, 0).(color.NRGBA).B, uint8(255))
	assert.Greater(t, left.B, left.R)
	assert.Greater(t, right.R, right.B)
}

func TestIntensityGridDownsamples(t *testing.T) {
	buf := paintedBuffer(t, 100)
	grid := newIntensityGrid(buf, 32)

	c, r := grid.Dims()
	assert.Equal(t, 25, c)
	assert.Equal(t, 25, r)
	assert.Equal(t, 4, grid.step)
	assert.Greater(t, grid.Z(12, 12), 0.0)
	assert.Zero(t, grid.Z(0, 0))
	assert.Equal(t, 2.0, grid.X(0))
}

func TestPlotHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "heatmap.png")
	require.NoError(t, PlotHeatmap(path, paintedBuffer(t, 64), render.DefaultRamp(), "test"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
