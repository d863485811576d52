// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package vae

import (
	"log/slog"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
	"github.com/born-ml/born-vae/internal/vae"
)

// Configuration

// Config holds every setting of a training or sampling session.
type Config = vae.Config

// DefaultConfig returns the reference MNIST configuration.
func DefaultConfig() Config {
	return vae.DefaultConfig()
}

// Activation is the hidden-layer nonlinearity.
type Activation = nn.Activation

// Activation constants.
const (
	Tanh Activation = nn.Tanh
	ReLU Activation = nn.ReLU
)

// Sharing selects the dense-layer parameter layout.
type Sharing = nn.Sharing

// Sharing constants.
const (
	PerSlot Sharing = nn.PerSlot
	Shared  Sharing = nn.Shared
)

// Optimizer names.
const (
	OptimizerAdam = vae.OptimizerAdam
	OptimizerSGD  = vae.OptimizerSGD
)

// Training

// Trainer owns the model, optimizer and step counter.
type Trainer = vae.Trainer

// BatchSource supplies [n, input_dim] training batches.
type BatchSource = vae.BatchSource

// State is the lifecycle state of a Trainer.
type State = vae.State

// Trainer states.
const (
	StateUninitialized = vae.StateUninitialized
	StateResumed       = vae.StateResumed
	StateTraining      = vae.StateTraining
	StateCompleted     = vae.StateCompleted
	StateInterrupted   = vae.StateInterrupted
	StateFailed        = vae.StateFailed
)

// Option configures a Trainer.
type Option = vae.Option

// NewTrainer builds a model for cfg, restoring it from cfg.CheckpointPath
// when resume is true.
//
// Example:
//
//	trainer, err := vae.NewTrainer(cfg, false, vae.WithLogger(logger))
func NewTrainer(cfg Config, resume bool, opts ...Option) (*Trainer, error) {
	return vae.NewTrainer(cfg, resume, opts...)
}

// WithLogger sets the logger for progress and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return vae.WithLogger(logger)
}

// WeightsOnly restores the Parameter Set without the optimizer state, so a
// checkpoint from any optimizer can be decoded. Such a Trainer cannot train.
func WeightsOnly() Option {
	return vae.WeightsOnly()
}

// Model

// Model is the encoder/decoder pair.
type Model = vae.Model

// EncoderOutput holds posterior parameters.
type EncoderOutput = vae.EncoderOutput

// DecoderOutput holds reconstruction logits and probabilities.
type DecoderOutput = vae.DecoderOutput

// LossTerms holds the objective and its parts.
type LossTerms = vae.LossTerms

// Sampling

// DefaultGridWidth is the default mosaic grid width.
const DefaultGridWidth = vae.DefaultGridWidth

// SampleGrid returns g² latent points spaced by normal quantiles.
func SampleGrid(g int) (*tensor.Tensor, error) {
	return vae.SampleGrid(g)
}

// Assemble tiles g² decoded images into one square image.
func Assemble(images *tensor.Tensor, g, inputDim int) (*tensor.Tensor, error) {
	return vae.Assemble(images, g, inputDim)
}

// Errors

// Error values returned by this package.
var (
	ErrConfiguration      = vae.ErrConfiguration
	ErrCheckpointMismatch = vae.ErrCheckpointMismatch
	ErrNumericInstability = vae.ErrNumericInstability
	ErrInterrupted        = vae.ErrInterrupted
	ErrInvalidBatch       = vae.ErrInvalidBatch
)

// ShapeMismatchError reports a checkpoint tensor of the wrong shape.
type ShapeMismatchError = vae.ShapeMismatchError
