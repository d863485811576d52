// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vae trains and samples a variational autoencoder on flattened
// images.
//
// # Overview
//
// The model encodes each input into a diagonal Gaussian over a small latent
// space, samples it with the reparameterization trick and decodes the sample
// to per-pixel Bernoulli logits. Training minimizes the negative evidence
// lower bound with Adam (or SGD) and checkpoints the full training state so
// runs can be resumed.
//
// # Basic Usage
//
//	cfg := vae.DefaultConfig()
//	cfg.CheckpointPath = "runs/mnist.ckpt"
//
//	trainer, err := vae.NewTrainer(cfg, false)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	// The checkpoint is written however Fit returns.
//	if err := trainer.Fit(ctx, source); err != nil && !errors.Is(err, vae.ErrInterrupted) {
//	    return err
//	}
//
// # Sampling
//
// With a two-dimensional latent space the decoder output over an evenly
// spaced grid of normal quantiles shows the learned manifold:
//
//	trainer, err := vae.NewTrainer(cfg, true) // restore from cfg.CheckpointPath
//	mosaic, err := trainer.Mosaic(vae.DefaultGridWidth)
//
// # Parameter Sharing
//
// By default every position in a batch owns its own copy of each weight
// matrix (ParameterSharing = PerSlot). Shared collapses them into a single
// conventional dense layer. Checkpoints are only compatible with the layout
// they were written with.
package vae
