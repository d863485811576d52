package nn

import (
	"github.com/born-ml/born-vae/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The tensor pointer identifies the parameter in the gradient map returned
// by autodiff.Backward; optimizers update its data in place.
//
// Example:
//
//	weight := nn.NewParameter("encoder.w1", tensor.Zeros(tensor.Shape{100, 500, 784}))
//	grad := grads[weight.Tensor()]
type Parameter struct {
	name   string         // Parameter name (e.g., "encoder.w1")
	tensor *tensor.Tensor // The parameter tensor
	grad   *tensor.Tensor // Gradient from the most recent step
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
