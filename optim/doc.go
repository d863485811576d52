// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Optimizers update parameters in place from the gradient map returned by
// autodiff.Backward. Their moments and timestep are part of the state dict,
// so a checkpoint restores training exactly where it stopped.
//
// # Training Loop Pattern
//
//	backend := autodiff.New(cpu.New())
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float32{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//
//	for step := 0; step < steps; step++ {
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//	    loss := lossFn(backend, model)
//	    grads := autodiff.Backward(loss, backend)
//	    backend.Tape().StopRecording()
//	    optimizer.Step(grads)
//	}
package optim
