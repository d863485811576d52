// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/serialization"
	"github.com/born-ml/born-vae/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Dense is a batched affine layer y = W·x + b over [batch, in, 1] columns.
type Dense = nn.Dense

// Sequential chains modules, feeding each output into the next.
type Sequential = nn.Sequential

// NewSequential creates a container running modules in order.
//
// Example:
//
//	f := nn.NewWeightFactory(100, 0.1, nn.PerSlot, rng)
//	mlp := nn.NewSequential(f.Dense("hidden", 784, 500), nn.Tanh)
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Initialization

// Sharing selects per-slot or shared dense parameters.
type Sharing = nn.Sharing

// Sharing constants.
const (
	PerSlot Sharing = nn.PerSlot
	Shared  Sharing = nn.Shared
)

// WeightFactory allocates N(0, std²) weights and zero biases.
type WeightFactory = nn.WeightFactory

// NewWeightFactory creates a factory for layers processing batches of the
// given size. Layers created in the same order from the same seed are
// identical.
func NewWeightFactory(batch int, std float64, sharing Sharing, rng *rand.Rand) *WeightFactory {
	return nn.NewWeightFactory(batch, std, sharing, rng)
}

// Activations

// Activation is an elementwise nonlinearity usable as a Module.
type Activation = nn.Activation

// Activation constants.
const (
	Tanh Activation = nn.Tanh
	ReLU Activation = nn.ReLU
)

// Loss functions

// KLDivergence returns KL(N(mu, sigmaSq) || N(0, I)) per batch row.
func KLDivergence(backend tensor.Backend, mu, logSigmaSq, sigmaSq *tensor.Tensor) *tensor.Tensor {
	return nn.KLDivergence(backend, mu, logSigmaSq, sigmaSq)
}

// BinaryCrossEntropyWithLogits sums the stable binary cross-entropy
// between sigmoid(logits) and targets.
func BinaryCrossEntropyWithLogits(backend tensor.Backend, logits, targets *tensor.Tensor) *tensor.Tensor {
	return nn.BinaryCrossEntropyWithLogits(backend, logits, targets)
}

// WeightDecay returns (lambda/2)·Σ‖p‖², or nil when lambda is not positive.
func WeightDecay(backend tensor.Backend, params []*Parameter, lambda float32) *tensor.Tensor {
	return nn.WeightDecay(backend, params, lambda)
}

// State dicts and checkpoints

// StateDict maps parameter names to their tensors.
func StateDict(params []*Parameter) map[string]*tensor.Tensor {
	return nn.StateDict(params)
}

// LoadStateDict copies stateDict into params, checking names and shapes.
func LoadStateDict(params []*Parameter, stateDict map[string]*tensor.Tensor) error {
	return nn.LoadStateDict(params, stateDict)
}

// Checkpoint is a training state snapshot.
type Checkpoint = nn.Checkpoint

// OptimizerState is implemented by optimizers stored in checkpoints.
type OptimizerState = nn.OptimizerState

// WriteOptions controls checkpoint encoding.
type WriteOptions = serialization.WriteOptions

// LoadCheckpoint restores params and optimizer from the checkpoint at path.
func LoadCheckpoint(path string, params []*Parameter, optimizer OptimizerState) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, params, optimizer)
}

// Errors
var (
	ErrMissingTensor     = nn.ErrMissingTensor
	ErrUnexpectedTensor  = nn.ErrUnexpectedTensor
	ErrOptimizerMismatch = nn.ErrOptimizerMismatch
	ErrNotCheckpoint     = nn.ErrNotCheckpoint
)

// ShapeError reports a state dict tensor whose shape differs from the
// parameter it is loaded into.
type ShapeError = nn.ShapeError
