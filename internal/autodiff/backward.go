package autodiff

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// BackwardCapable is an interface for backends that support the backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
	// Kernels returns the backend used to evaluate gradient expressions.
	Kernels() tensor.Backend
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Kernels returns the wrapped backend (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) Kernels() tensor.Backend {
	return b.inner
}

// Backward computes gradients of t using the backend's tape.
//
// The output gradient is seeded with ones, so for a scalar loss the result
// holds dLoss/dX for every recorded tensor X.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	y := backend.Square(x)
//	loss := backend.Sum(y)
//	gradients := autodiff.Backward(loss, backend)
//	grad := gradients[x] // 2x
func Backward(t *tensor.Tensor, backend BackwardCapable) map[*tensor.Tensor]*tensor.Tensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if t == nil {
		panic(fmt.Sprintf("backward: nil output tensor on %s", backend.Name()))
	}

	return tape.Backward(t, tensor.Ones(t.Shape()), backend.Kernels())
}
