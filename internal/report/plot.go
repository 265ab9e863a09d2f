package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"gaze-heatmap/pkg/heatmap"
)

// intensityGrid adapts a buffer's intensity plane to plotter.GridXYZ, optionally
// downsampled by averaging step×step blocks.
type intensityGrid struct {
	cells [][]float64
	step  int
}

func newIntensityGrid(buf *heatmap.Buffer, maxCells int) *intensityGrid {
	step := 1
	for buf.Width()/step > maxCells || buf.Height()/step > maxCells {
		step++
	}
	src := buf.Intensities()
	rows, cols := (buf.Height()+step-1)/step, (buf.Width()+step-1)/step
	cells := make([][]float64, rows)
	for r := range cells {
		cells[r] = make([]float64, cols)
		for c := range cells[r] {
			sum, n := 0.0, 0
			for y := r * step; y < (r+1)*step && y < buf.Height(); y++ {
				for x := c * step; x < (c+1)*step && x < buf.Width(); x++ {
					sum += src[y][x]
					n++
				}
			}
			cells[r][c] = sum / float64(n)
		}
	}
	return &intensityGrid{cells: cells, step: step}
}

func (g *intensityGrid) Dims() (c, r int)   { return len(g.cells[0]), len(g.cells) }
func (g *intensityGrid) Z(c, r int) float64 { return g.cells[r][c] }
func (g *intensityGrid) X(c int) float64    { return (float64(c) + 0.5) * float64(g.step) }
func (g *intensityGrid) Y(r int) float64    { return (float64(r) + 0.5) * float64(g.step) }

// PlotHeatmap renders the buffer's intensity as a plot with the given palette and
// saves it to path. The format follows the file extension (png, svg, pdf, ...).
func PlotHeatmap(path string, buf *heatmap.Buffer, pal palette.Palette, title string) error {
	grid := newIntensityGrid(buf, 256)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "u (px)"
	p.Y.Label.Text = "v (px)"

	hm := plotter.NewHeatMap(grid, pal)
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save heatmap plot: %w", err)
	}
	return nil
}
