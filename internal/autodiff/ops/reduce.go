package ops

import "github.com/born-ml/born-vae/internal/tensor"

// SumOp represents the total sum of x as a scalar.
type SumOp struct{ base }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.Tensor) *SumOp {
	return &SumOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward broadcasts the scalar gradient to every input element.
func (op *SumOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Full(op.inputs[0].Shape(), grad.Item())}
}

// MeanOp represents the mean of all elements of x as a scalar.
type MeanOp struct{ base }

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.Tensor) *MeanOp {
	return &MeanOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward spreads grad/n over every input element.
func (op *MeanOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	input := op.inputs[0]
	return []*tensor.Tensor{tensor.Full(input.Shape(), grad.Item()/float32(input.NumElements()))}
}

// SumDimOp represents a sum along one dimension.
type SumDimOp struct {
	base
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x *tensor.Tensor, dim int, keepDim bool, output *tensor.Tensor) *SumDimOp {
	return &SumDimOp{base: base{inputs: []*tensor.Tensor{x}, output: output}, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the gradient back along the summed dimension.
func (op *SumDimOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	inShape := op.inputs[0].Shape()

	if !op.keepDim {
		kept := inShape.Clone()
		kept[op.dim] = 1
		grad = backend.Reshape(grad, kept)
	}

	return []*tensor.Tensor{backend.Add(tensor.Zeros(inShape), grad)}
}
