package ops

import "github.com/born-ml/born-vae/internal/tensor"

// TanhOp represents output = tanh(x).
//
// Backward pass: d(tanh(x))/dx = 1 - tanh²(x).
type TanhOp struct{ base }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.Tensor) *TanhOp {
	return &TanhOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward computes grad * (1 - output²).
func (op *TanhOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{zipWith(grad, op.output, func(g, y float32) float32 {
		return g * (1 - y*y)
	})}
}

// ReLUOp represents output = max(0, x).
//
// Backward pass: d(ReLU(x))/dx = 1 if x > 0, else 0.
type ReLUOp struct{ base }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.Tensor) *ReLUOp {
	return &ReLUOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward masks the gradient where the input was not positive.
func (op *ReLUOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{zipWith(grad, op.inputs[0], func(g, x float32) float32 {
		if x > 0 {
			return g
		}
		return 0
	})}
}

// SigmoidOp represents output = σ(x) = 1 / (1 + exp(-x)).
//
// Backward pass: dσ/dx = σ(x) * (1 - σ(x)), using the saved output.
type SigmoidOp struct{ base }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.Tensor) *SigmoidOp {
	return &SigmoidOp{base{inputs: []*tensor.Tensor{x}, output: output}}
}

// Backward computes grad * σ(x) * (1 - σ(x)).
func (op *SigmoidOp) Backward(grad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{zipWith(grad, op.output, func(g, s float32) float32 {
		return g * s * (1 - s)
	})}
}
