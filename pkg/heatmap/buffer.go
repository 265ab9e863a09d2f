package heatmap

import (
	"fmt"
	"image"
	"image/color"

	"gaze-heatmap/pkg/render"
)

// Uploader receives the buffer contents on every commit, e.g. to refresh a GPU texture.
type Uploader interface {
	Upload(img *image.RGBA) error
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(img *image.RGBA) error

// Upload calls f.
func (f UploaderFunc) Upload(img *image.RGBA) error { return f(img) }

// Buffer is the accumulation buffer: a W×H grid whose alpha channel is the accumulated
// intensity of each pixel. It has a single owner and is not safe for concurrent use,
// apart from writes to disjoint pixels.
type Buffer struct {
	width, height int
	pix           []render.Color
	neverPainted  bool
	uploaders     []Uploader
}

// NewBuffer returns a cleared w×h buffer. Non-positive sizes are a caller error.
func NewBuffer(w, h int) *Buffer {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("heatmap: invalid buffer size %dx%d", w, h))
	}
	return &Buffer{
		width:        w,
		height:       h,
		pix:          make([]render.Color, w*h),
		neverPainted: true,
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Bounds returns the pixel rectangle of the buffer.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// In reports whether (x, y) addresses a pixel of the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// At returns the pixel at (x, y), or transparent black outside the buffer.
func (b *Buffer) At(x, y int) render.Color {
	if !b.In(x, y) {
		return render.Transparent
	}
	return b.pix[y*b.width+x]
}

// Intensity returns the accumulated intensity at (x, y).
func (b *Buffer) Intensity(x, y int) float64 {
	return float64(b.At(x, y).A)
}

// Set writes the pixel at (x, y). Writes outside the buffer are ignored.
func (b *Buffer) Set(x, y int, c render.Color) {
	if !b.In(x, y) {
		return
	}
	b.pix[y*b.width+x] = c
}

// Fill sets every pixel to c without committing.
func (b *Buffer) Fill(c render.Color) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// NeverPainted reports whether no paint has started since creation or the last Clear.
func (b *Buffer) NeverPainted() bool { return b.neverPainted }

// Clear sets every pixel to transparent black, marks the buffer as never painted and
// commits. Clearing twice is the same as clearing once.
func (b *Buffer) Clear() error {
	b.Fill(render.Transparent)
	b.neverPainted = true
	return b.Commit()
}

// AddUploader registers u to receive every commit.
func (b *Buffer) AddUploader(u Uploader) {
	b.uploaders = append(b.uploaders, u)
}

// Commit pushes the current contents to every uploader. The first upload error is
// returned after all uploaders ran.
func (b *Buffer) Commit() error {
	if len(b.uploaders) == 0 {
		return nil
	}
	img := b.Snapshot()
	var firstErr error
	for _, u := range b.uploaders {
		if err := u.Upload(img); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("upload heatmap: %w", err)
		}
	}
	return firstErr
}

// Snapshot copies the buffer into a premultiplied RGBA image with row 0 at the top
// (buffer row H-1).
func (b *Buffer) Snapshot() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	for y := 0; y < b.height; y++ {
		row := b.height - 1 - y
		for x := 0; x < b.width; x++ {
			c := b.pix[y*b.width+x]
			if c == render.Transparent {
				continue
			}
			img.SetRGBA(x, row, color.RGBAModel.Convert(c.NRGBA()).(color.RGBA))
		}
	}
	return img
}

// Intensities returns the accumulated intensity grid indexed [y][x] in buffer rows.
func (b *Buffer) Intensities() [][]float64 {
	out := make([][]float64, b.height)
	for y := range out {
		row := make([]float64, b.width)
		for x := range row {
			row[x] = float64(b.pix[y*b.width+x].A)
		}
		out[y] = row
	}
	return out
}

// Painted counts pixels with non-zero intensity.
func (b *Buffer) Painted() int {
	n := 0
	for _, c := range b.pix {
		if c.A > 0 {
			n++
		}
	}
	return n
}
