// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, losses and checkpoints the VAE is built from.
//
// # Overview
//
// This package contains:
//   - Layers: Dense, Sequential
//   - Activations: Tanh, ReLU
//   - Loss functions: KLDivergence, BinaryCrossEntropyWithLogits, WeightDecay
//   - Initialization: WeightFactory with per-slot or shared parameters
//   - Persistence: StateDict, LoadStateDict, Checkpoint
//
// # Parameter layout
//
// Dense layers operate on column batches [batch, in, 1]. With PerSlot every
// batch position owns a [out, in] weight matrix, so parameters are
// [batch, out, in]. With Shared a single [1, out, in] matrix is broadcast.
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/born-vae/backend/cpu"
//	    "github.com/born-ml/born-vae/nn"
//	    "github.com/born-ml/born-vae/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    f := nn.NewWeightFactory(8, 0.1, nn.Shared, rand.New(rand.NewSource(0)))
//	    mlp := nn.NewSequential(f.Dense("hidden", 4, 3), nn.Tanh)
//
//	    y := mlp.Forward(backend, tensor.Ones(tensor.Shape{8, 4, 1})) // [8, 3, 1]
//	}
package nn
