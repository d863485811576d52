package ops

import "github.com/born-ml/born-vae/internal/tensor"

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass: d(a*b)/da = b, d(a*b)/db = a.
type MulOp struct{ base }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{base{inputs: []*tensor.Tensor{a, b}, output: output}}
}

// Backward computes gradients for multiplication.
func (op *MulOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.Tensor{
		reduceBroadcast(backend.Mul(grad, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(grad, a), b.Shape(), backend),
	}
}

// MulScalarOp represents output = x * scalar.
type MulScalarOp struct {
	base
	scalar float32
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x *tensor.Tensor, scalar float32, output *tensor.Tensor) *MulScalarOp {
	return &MulScalarOp{base: base{inputs: []*tensor.Tensor{x}, output: output}, scalar: scalar}
}

// Backward computes grad * scalar.
func (op *MulScalarOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.MulScalar(grad, op.scalar)}
}

// AddScalarOp represents output = x + scalar.
type AddScalarOp struct{ base }

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.Tensor) *AddScalarOp {
	return &AddScalarOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{grad}
}
