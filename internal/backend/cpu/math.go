package cpu

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Exp computes e^x element-wise.
// Large inputs overflow to +Inf; callers detect that after the forward pass.
func (cpu *CPUBackend) Exp(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, math32.Exp)
}

// Sqrt computes the square root element-wise.
func (cpu *CPUBackend) Sqrt(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, math32.Sqrt)
}

// Square computes x² element-wise.
func (cpu *CPUBackend) Square(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, func(v float32) float32 { return v * v })
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return unary(x, func(v float32) float32 { return v * scalar })
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return unary(x, func(v float32) float32 { return v + scalar })
}
