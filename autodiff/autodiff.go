// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// A Backend wraps any tensor.Backend and records every operation on a
// gradient tape while recording is on. Backward then walks the tape from a
// scalar output and returns the gradient of every tensor that contributed.
//
// Example:
//
//	import (
//	    "github.com/born-ml/born-vae/autodiff"
//	    "github.com/born-ml/born-vae/backend/cpu"
//	    "github.com/born-ml/born-vae/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x := tensor.Full(tensor.Shape{3}, 2)
//	    loss := backend.Sum(backend.Square(x))
//
//	    grads := autodiff.Backward(loss, backend)
//	    _ = grads[x] // [4 4 4]
//	}
package autodiff

import (
	"github.com/born-ml/born-vae/internal/autodiff"
	"github.com/born-ml/born-vae/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes the gradients of t with respect to every recorded input.
func Backward(t *tensor.Tensor, backend BackwardCapable) map[*tensor.Tensor]*tensor.Tensor {
	return autodiff.Backward(t, backend)
}
