package ops

import "github.com/born-ml/born-vae/internal/tensor"

// ExpOp represents output = exp(x).
//
// Backward pass: d(exp(x))/dx = exp(x), reusing the saved output.
type ExpOp struct{ base }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.Tensor) *ExpOp {
	return &ExpOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward computes grad * exp(x).
func (op *ExpOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Mul(grad, op.output)}
}

// SqrtOp represents output = sqrt(x).
//
// Backward pass: d(sqrt(x))/dx = 1 / (2*sqrt(x)).
type SqrtOp struct{ base }

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.Tensor) *SqrtOp {
	return &SqrtOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward computes grad / (2*sqrt(x)).
func (op *SqrtOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{zipWith(grad, op.output, func(g, s float32) float32 {
		return g / (2 * s)
	})}
}

// SquareOp represents output = x².
type SquareOp struct{ base }

// NewSquareOp creates a new SquareOp.
func NewSquareOp(x, output *tensor.Tensor) *SquareOp {
	return &SquareOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward computes grad * 2x.
func (op *SquareOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{zipWith(grad, op.inputs[0], func(g, x float32) float32 {
		return 2 * g * x
	})}
}
