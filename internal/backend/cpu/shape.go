package cpu

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Reshape returns a copy of t with a new shape.
// The element count must be preserved.
func (cpu *CPUBackend) Reshape(t *tensor.Tensor, newShape tensor.Shape) *tensor.Tensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v", t.Shape(), t.NumElements(), newShape))
	}
	result, err := tensor.FromSlice(t.Data(), newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose swaps the last two dimensions of t.
func (cpu *CPUBackend) Transpose(t *tensor.Tensor) *tensor.Tensor {
	shape := t.Shape()
	ndim := len(shape)
	if ndim < 2 {
		panic(fmt.Sprintf("transpose: need at least 2 dimensions, got shape %v", shape))
	}

	rows, cols := shape[ndim-2], shape[ndim-1]
	outShape := shape.Clone()
	outShape[ndim-2], outShape[ndim-1] = cols, rows

	batch := t.NumElements() / (rows * cols)
	result := tensor.Zeros(outShape)
	in, out := t.Data(), result.Data()

	for b := 0; b < batch; b++ {
		base := b * rows * cols
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out[base+c*rows+r] = in[base+r*cols+c]
			}
		}
	}

	return result
}
