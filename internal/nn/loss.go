package nn

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// KLDivergence computes the closed-form KL divergence between a diagonal
// Gaussian posterior N(mu, sigma²) and the standard normal prior, per example:
//
//	KL = -0.5 * Σ_latent (1 + log σ² - μ² - σ²)
//
// Inputs have shape [batch, latent, 1]; the result has shape [batch, 1, 1].
func KLDivergence(backend tensor.Backend, mu, logSigmaSq, sigmaSq *tensor.Tensor) *tensor.Tensor {
	if !mu.Shape().Equal(logSigmaSq.Shape()) || !mu.Shape().Equal(sigmaSq.Shape()) {
		panic(fmt.Sprintf("KLDivergence: shape mismatch mu %v, logσ² %v, σ² %v",
			mu.Shape(), logSigmaSq.Shape(), sigmaSq.Shape()))
	}

	inner := backend.Sub(backend.Sub(backend.AddScalar(logSigmaSq, 1), backend.Square(mu)), sigmaSq)
	return backend.MulScalar(backend.SumDim(inner, 1, true), -0.5)
}

// BinaryCrossEntropyWithLogits computes the per-example reconstruction error
// Σ_pixels BCE(sigmoid(logits), targets) in logits form.
//
// Inputs have shape [batch, features, 1]; the result has shape [batch, 1, 1].
// The backend kernel never evaluates log(sigmoid(x)) directly, so the
// result stays finite for logits of any magnitude.
func BinaryCrossEntropyWithLogits(backend tensor.Backend, logits, targets *tensor.Tensor) *tensor.Tensor {
	if !logits.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("BinaryCrossEntropyWithLogits: logits %v and targets %v differ", logits.Shape(), targets.Shape()))
	}
	return backend.SumDim(backend.SigmoidCrossEntropyWithLogits(logits, targets), 1, true)
}

// WeightDecay computes (lambda / 2) * Σ ‖p‖² over params as a scalar.
//
// Returns nil when lambda is not strictly positive so callers can skip the
// term entirely.
func WeightDecay(backend tensor.Backend, params []*Parameter, lambda float32) *tensor.Tensor {
	if lambda <= 0 || len(params) == 0 {
		return nil
	}

	var total *tensor.Tensor
	for _, p := range params {
		sq := backend.Sum(backend.Square(p.Tensor()))
		if total == nil {
			total = sq
		} else {
			total = backend.Add(total, sq)
		}
	}
	return backend.MulScalar(total, lambda/2)
}
