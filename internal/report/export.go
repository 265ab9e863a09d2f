// Package report exports heatmap buffers as images and plots.
package report

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	return writeImage(path, img, png.Encode)
}

// WriteBMP encodes img to path as a 32-bit BMP.
func WriteBMP(path string, img image.Image) error {
	return writeImage(path, img, bmp.Encode)
}

func writeImage(path string, img image.Image, encode func(w io.Writer, m image.Image) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// Scale resamples img to w×h. Nearest-neighbour keeps hard texel edges, which suits
// the 256×1 lookup texture; larger images use Catmull-Rom.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var scaler draw.Scaler = draw.CatmullRom
	if img.Bounds().Dy() == 1 || img.Bounds().Dx() == 1 {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
