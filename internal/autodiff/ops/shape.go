package ops

import "github.com/born-ml/born-vae/internal/tensor"

// ReshapeOp represents a reshape. Its gradient is the output gradient
// reshaped back to the input's shape.
type ReshapeOp struct{ base }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.Tensor) *ReshapeOp {
	return &ReshapeOp{base{inputs: []*tensor.Tensor{input}, output: output}}
}

// Backward reshapes the gradient to the input shape.
func (op *ReshapeOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Reshape(grad, op.inputs[0].Shape())}
}

// TransposeOp swaps the last two dimensions. Its own inverse.
type TransposeOp struct{ base }

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.Tensor) *TransposeOp {
	return &TransposeOp{base{inputs: []*tensor.Tensor{input}, output: output}}
}

// Backward transposes the gradient back.
func (op *TransposeOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Transpose(grad)}
}
