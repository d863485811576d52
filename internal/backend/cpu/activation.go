package cpu

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
// The exponential is only ever taken of a non-positive argument.
func (cpu *CPUBackend) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	return unary(x, sigmoid)
}

func sigmoid(v float32) float32 {
	if v >= 0 {
		return 1 / (1 + math32.Exp(-v))
	}
	e := math32.Exp(v)
	return e / (1 + e)
}

// SigmoidCrossEntropyWithLogits computes, element-wise,
//
//	max(x, 0) - x*z + log(1 + exp(-|x|))
//
// for logits x and labels z. This equals -z*log(σ(x)) - (1-z)*log(1-σ(x))
// but stays finite for logits of any magnitude.
func (cpu *CPUBackend) SigmoidCrossEntropyWithLogits(logits, labels *tensor.Tensor) *tensor.Tensor {
	return broadcastBinary("sigmoid_cross_entropy", logits, labels, func(x, z float32) float32 {
		return max(x, 0) - x*z + math32.Log1p(math32.Exp(-math32.Abs(x)))
	})
}

// unary allocates a result and applies fn to every element of x.
func unary(x *tensor.Tensor, fn func(float32) float32) *tensor.Tensor {
	result := tensor.Zeros(x.Shape())
	out, in := result.Data(), x.Data()
	for i, v := range in {
		out[i] = fn(v)
	}
	return result
}
