package vae

import (
	"fmt"
	"math"

	gtensor "github.com/pdevine/tensor"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Assemble tiles g² images of inputDim pixels into one (g·w)×(g·w) image,
// w = sqrt(inputDim), placing image i*g+j at grid cell (i, j).
//
// images has shape [g², inputDim] with each row a row-major w×w image.
// It fails with ErrConfiguration when inputDim is not a perfect square or
// the image count is not g².
func Assemble(images *tensor.Tensor, g, inputDim int) (*tensor.Tensor, error) {
	if g <= 0 {
		return nil, fmt.Errorf("%w: grid width must be positive, got %d", ErrConfiguration, g)
	}
	w, err := imageWidth(inputDim)
	if err != nil {
		return nil, err
	}
	shape := images.Shape()
	if len(shape) != 2 || shape[1] != inputDim {
		return nil, fmt.Errorf("%w: images have shape %v, want [%d, %d]", ErrConfiguration, shape, g*g, inputDim)
	}
	if shape[0] != g*g {
		return nil, fmt.Errorf("%w: got %d images for a %dx%d grid", ErrConfiguration, shape[0], g, g)
	}

	backing := make([]float32, images.NumElements())
	copy(backing, images.Data())

	// (grid row, grid col, pixel row, pixel col) -> (grid row, pixel row, grid col, pixel col)
	tiles := gtensor.New(gtensor.WithShape(g, g, w, w), gtensor.WithBacking(backing))
	if err := tiles.T(0, 2, 1, 3); err != nil {
		return nil, fmt.Errorf("mosaic transpose: %w", err)
	}
	if err := tiles.Transpose(); err != nil {
		return nil, fmt.Errorf("mosaic transpose: %w", err)
	}
	if err := tiles.Reshape(g*w, g*w); err != nil {
		return nil, fmt.Errorf("mosaic reshape: %w", err)
	}

	pixels, ok := tiles.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("mosaic: unexpected backing %T", tiles.Data())
	}
	return tensor.FromSlice(pixels, tensor.Shape{g * w, g * w})
}

// imageWidth returns w with w*w == inputDim.
func imageWidth(inputDim int) (int, error) {
	w := int(math.Round(math.Sqrt(float64(inputDim))))
	if inputDim <= 0 || w*w != inputDim {
		return 0, fmt.Errorf("%w: input dim %d is not a perfect square", ErrConfiguration, inputDim)
	}
	return w, nil
}
