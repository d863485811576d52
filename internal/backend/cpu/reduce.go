package cpu

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Sum returns the sum of all elements as a 0-D tensor.
// Accumulation is done in float64 to keep long reductions accurate.
func (cpu *CPUBackend) Sum(x *tensor.Tensor) *tensor.Tensor {
	var sum float64
	for _, v := range x.Data() {
		sum += float64(v)
	}
	return tensor.Scalar(float32(sum))
}

// Mean returns the mean of all elements as a 0-D tensor.
func (cpu *CPUBackend) Mean(x *tensor.Tensor) *tensor.Tensor {
	var sum float64
	data := x.Data()
	for _, v := range data {
		sum += float64(v)
	}
	return tensor.Scalar(float32(sum / float64(len(data))))
}

// SumDim sums along dimension dim.
// With keepDim the reduced dimension is kept with size 1; otherwise it is removed.
func (cpu *CPUBackend) SumDim(x *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("SumDim: invalid dimension %d for shape %v", dim, shape))
	}

	outer := 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	inner := 1
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	size := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	outShape = append(outShape, shape[:dim]...)
	if keepDim {
		outShape = append(outShape, 1)
	}
	outShape = append(outShape, shape[dim+1:]...)

	result := tensor.Zeros(outShape)
	in, out := x.Data(), result.Data()

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var sum float64
			for s := 0; s < size; s++ {
				sum += float64(in[(o*size+s)*inner+i])
			}
			out[o*inner+i] = float32(sum)
		}
	}

	return result
}
