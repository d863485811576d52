// Package nn implements the neural network building blocks of the VAE.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Named trainable tensors with gradient tracking
//   - WeightFactory: Gaussian weight and zero bias allocation for dense layers
//   - Dense: Batched affine layer y = W @ x + b
//   - Activations: Tanh, ReLU
//   - Sequential: Container for stacking layers
//   - Loss terms: KL divergence, logits cross-entropy, weight decay
//   - Checkpoint: Parameter and optimizer state persistence
//
// Tensors flowing through modules are column batches of shape
// [batch, features, 1]; parameters carry the batch dimension explicitly.
package nn

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/born-vae/internal/tensor"
)

// ErrMissingTensor is returned when a state dictionary lacks a required entry.
var ErrMissingTensor = errors.New("missing tensor in state dict")

// ErrUnexpectedTensor is returned when a state dictionary holds an entry no
// parameter claims.
var ErrUnexpectedTensor = errors.New("unexpected tensor in state dict")

// ShapeError reports a state-dict tensor whose shape differs from the live one.
type ShapeError struct {
	Name string
	Want tensor.Shape
	Got  tensor.Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor %q: shape %v, want %v", e.Name, e.Got, e.Want)
}

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	hidden := nn.NewSequential(
//	    factory.Dense("encoder.hidden", 784, 500),
//	    nn.Tanh,
//	)
type Module interface {
	// Forward computes the output of the module on the given backend.
	//
	// Passing an autodiff backend records the computation for Backward.
	Forward(backend tensor.Backend, input *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}

// StateDict returns a map of parameter names to their live tensors.
func StateDict(params []*Parameter) map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor, len(params))
	for _, p := range params {
		stateDict[p.Name()] = p.Tensor()
	}
	return stateDict
}

// CheckStateDict reports whether stateDict can be loaded into params:
// every parameter must be present with an identical shape, and stateDict
// must not hold tensors no parameter claims. Nothing is copied.
func CheckStateDict(params []*Parameter, stateDict map[string]*tensor.Tensor) error {
	byName := make(map[string]*Parameter, len(params))
	for _, p := range params {
		byName[p.Name()] = p
		src, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingTensor, p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return &ShapeError{Name: p.Name(), Want: p.Tensor().Shape(), Got: src.Shape()}
		}
	}

	extra := make([]string, 0)
	for name := range stateDict {
		if _, ok := byName[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%w: %q", ErrUnexpectedTensor, extra)
	}
	return nil
}

// LoadStateDict copies tensors from stateDict into params.
//
// stateDict is checked with CheckStateDict before any value is copied, so a
// failed load leaves params untouched.
func LoadStateDict(params []*Parameter, stateDict map[string]*tensor.Tensor) error {
	if err := CheckStateDict(params, stateDict); err != nil {
		return err
	}
	for _, p := range params {
		if err := p.Tensor().CopyFrom(stateDict[p.Name()]); err != nil {
			return fmt.Errorf("load %q: %w", p.Name(), err)
		}
	}
	return nil
}
