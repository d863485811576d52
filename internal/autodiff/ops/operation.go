// Package ops defines the differentiable operations recorded on the gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend before the op is recorded
//   - Backward pass: computes gradients for inputs given the output gradient
//
// Gradients of inputs that were broadcast in the forward pass are summed back
// to the input's shape before they are returned.
package ops

import "github.com/born-ml/born-vae/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input; a nil entry means no gradient flows
	// to that input.
	Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.Tensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.Tensor
}

// base stores inputs and output for operations.
type base struct {
	inputs []*tensor.Tensor
	output *tensor.Tensor
}

// Inputs returns the input tensors.
func (b *base) Inputs() []*tensor.Tensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *base) Output() *tensor.Tensor {
	return b.output
}
