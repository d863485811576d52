// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient tracking
// through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its backward pass
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := backend.Sum(backend.Square(x))
//	grads := autodiff.Backward(loss, backend)
//	backend.Tape().Clear()
package autodiff

import (
	"github.com/born-ml/born-vae/internal/autodiff/ops"
	"github.com/born-ml/born-vae/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// record adds op to the tape when recording and returns the op's output.
func (b *AutodiffBackend[B]) record(op ops.Operation) *tensor.Tensor {
	b.tape.Record(op)
	return op.Output()
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewAddOp(a, c, b.inner.Add(a, c)))
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSubOp(a, c, b.inner.Sub(a, c)))
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewMulOp(a, c, b.inner.Mul(a, c)))
}

// BatchMatMul performs batched matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) BatchMatMul(a, c *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewBatchMatMulOp(a, c, b.inner.BatchMatMul(a, c)))
}

// Reshape reshapes a tensor and records the operation.
//
// Reshape allocates a new tensor, so it must be on the tape for gradients to
// reach the original.
func (b *AutodiffBackend[B]) Reshape(t *tensor.Tensor, newShape tensor.Shape) *tensor.Tensor {
	return b.record(ops.NewReshapeOp(t, b.inner.Reshape(t, newShape)))
}

// Transpose swaps the last two dimensions and records the operation.
func (b *AutodiffBackend[B]) Transpose(t *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewTransposeOp(t, b.inner.Transpose(t)))
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return b.record(ops.NewMulScalarOp(x, scalar, b.inner.MulScalar(x, scalar)))
}

// AddScalar adds a constant and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return b.record(ops.NewAddScalarOp(x, b.inner.AddScalar(x, scalar)))
}

// Exp computes e^x and records the operation.
func (b *AutodiffBackend[B]) Exp(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewExpOp(x, b.inner.Exp(x)))
}

// Sqrt computes sqrt(x) and records the operation.
func (b *AutodiffBackend[B]) Sqrt(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSqrtOp(x, b.inner.Sqrt(x)))
}

// Square computes x² and records the operation.
func (b *AutodiffBackend[B]) Square(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSquareOp(x, b.inner.Square(x)))
}

// Tanh applies tanh and records the operation.
func (b *AutodiffBackend[B]) Tanh(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewTanhOp(x, b.inner.Tanh(x)))
}

// ReLU applies max(0, x) and records the operation.
func (b *AutodiffBackend[B]) ReLU(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewReLUOp(x, b.inner.ReLU(x)))
}

// Sigmoid applies the logistic function and records the operation.
func (b *AutodiffBackend[B]) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSigmoidOp(x, b.inner.Sigmoid(x)))
}

// Sum reduces all elements to a scalar and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSumOp(x, b.inner.Sum(x)))
}

// SumDim sums along a dimension and records the operation.
func (b *AutodiffBackend[B]) SumDim(x *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	return b.record(ops.NewSumDimOp(x, dim, keepDim, b.inner.SumDim(x, dim, keepDim)))
}

// Mean averages all elements to a scalar and records the operation.
func (b *AutodiffBackend[B]) Mean(x *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewMeanOp(x, b.inner.Mean(x)))
}

// SigmoidCrossEntropyWithLogits computes the logits-form binary cross-entropy
// and records the operation.
func (b *AutodiffBackend[B]) SigmoidCrossEntropyWithLogits(logits, labels *tensor.Tensor) *tensor.Tensor {
	return b.record(ops.NewSigmoidCrossEntropyOp(logits, labels, b.inner.SigmoidCrossEntropyWithLogits(logits, labels)))
}
