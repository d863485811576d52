package ops

import "github.com/born-ml/born-vae/internal/tensor"

// AddOp represents element-wise addition: output = a + b.
//
// Backward pass: d(a+b)/da = 1, d(a+b)/db = 1, reduced over broadcast dims.
type AddOp struct{ base }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.Tensor) *AddOp {
	return &AddOp{base{inputs: []*tensor.Tensor{a, b}, output: output}}
}

// Backward computes gradients for addition.
func (op *AddOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		reduceBroadcast(grad, op.inputs[0].Shape(), backend),
		reduceBroadcast(grad, op.inputs[1].Shape(), backend),
	}
}

// SubOp represents element-wise subtraction: output = a - b.
type SubOp struct{ base }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.Tensor) *SubOp {
	return &SubOp{base{inputs: []*tensor.Tensor{a, b}, output: output}}
}

// Backward computes gradients for subtraction: [grad, -grad].
func (op *SubOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		reduceBroadcast(grad, op.inputs[0].Shape(), backend),
		reduceBroadcast(backend.MulScalar(grad, -1), op.inputs[1].Shape(), backend),
	}
}
