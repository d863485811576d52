// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - Adam: Adaptive Moment Estimation (default for VAE training)
//   - SGD: Stochastic Gradient Descent with momentum
//
// Optimizer state is exported through StateDict so that checkpoints can
// restore it exactly on resume.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	backend.Tape().StartRecording()
//	loss := model.Loss(backend, x, eps)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	backend.Tape().Clear()
package optim

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	nn.OptimizerState

	// Step applies gradient updates to all parameters.
	//
	// Takes the gradient map from Backward() and updates parameters in-place.
	// Parameters without a gradient are left unchanged.
	Step(grads map[*tensor.Tensor]*tensor.Tensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// getGradient retrieves the gradient for a parameter.
//
// Returns nil if the parameter was not part of the computation graph.
func getGradient(param *nn.Parameter, grads map[*tensor.Tensor]*tensor.Tensor) *tensor.Tensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor()]
}

// checkSlot reports whether stateDict holds key with the shape of dst.
func checkSlot(stateDict map[string]*tensor.Tensor, key string, dst *tensor.Tensor) error {
	src, ok := stateDict[key]
	if !ok {
		return fmt.Errorf("%w: optimizer state %q", nn.ErrMissingTensor, key)
	}
	if !src.Shape().Equal(dst.Shape()) {
		return &nn.ShapeError{Name: key, Want: dst.Shape(), Got: src.Shape()}
	}
	return nil
}

// timestepSplit is the radix of the two-part timestep encoding. Both parts
// stay below 2^24, where every integer is exact in float32.
const timestepSplit = 1 << 24

// timestepTensor encodes t as [t / 2^24, t % 2^24].
func timestepTensor(t int) *tensor.Tensor {
	out := tensor.Zeros(tensor.Shape{2})
	out.Data()[0] = float32(t / timestepSplit)
	out.Data()[1] = float32(t % timestepSplit)
	return out
}

// readTimestep decodes a timestep written by timestepTensor.
func readTimestep(stateDict map[string]*tensor.Tensor, key string) (int, error) {
	src, ok := stateDict[key]
	if !ok {
		return 0, fmt.Errorf("%w: optimizer state %q", nn.ErrMissingTensor, key)
	}
	if !src.Shape().Equal(tensor.Shape{2}) {
		return 0, &nn.ShapeError{Name: key, Want: tensor.Shape{2}, Got: src.Shape()}
	}
	hi, lo := src.Data()[0], src.Data()[1]
	if hi < 0 || lo < 0 || hi >= timestepSplit || lo >= timestepSplit ||
		hi != float32(int(hi)) || lo != float32(int(lo)) {
		return 0, fmt.Errorf("optimizer state %q: invalid timestep [%v %v]", key, hi, lo)
	}
	return int(hi)*timestepSplit + int(lo), nil
}
