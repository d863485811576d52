// Package render turns mosaics into grayscale PNG images.
package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Options controls how a mosaic is rendered.
type Options struct {
	// Scale is the integer upscaling factor; values below 1 mean 1.
	Scale int
	// Normalize stretches the value range to black..white. Without it
	// values are clamped to [0, 1].
	Normalize bool
}

// Gray converts a 2-D tensor to a grayscale image, row 0 at the top.
func Gray(t *tensor.Tensor, opts Options) (*image.Gray, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("render: need a 2-D tensor, got shape %v", shape)
	}
	h, w := shape[0], shape[1]

	values := make([]float64, len(t.Data()))
	for i, v := range t.Data() {
		values[i] = float64(v)
	}

	lo, hi := 0.0, 1.0
	if opts.Normalize && len(values) > 0 {
		lo, hi = floats.Min(values), floats.Max(values)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values {
		level := (v - lo) / span
		switch {
		case level < 0 || math.IsNaN(level):
			level = 0
		case level > 1:
			level = 1
		}
		img.Pix[(i/w)*img.Stride+i%w] = uint8(level*255 + 0.5)
	}

	if opts.Scale <= 1 {
		return img, nil
	}
	scaled := image.NewGray(image.Rect(0, 0, w*opts.Scale, h*opts.Scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled, nil
}

// WritePNG renders t and writes it to path.
func WritePNG(path string, t *tensor.Tensor, opts Options) error {
	img, err := Gray(t, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	//nolint:gosec // G304: output path comes from the user
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
