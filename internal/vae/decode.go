package vae

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// DefaultGridWidth is the mosaic grid width used when none is given.
const DefaultGridWidth = 20

// Decode maps latent points z ([n, latent]) to pixel probabilities
// ([n, input]) with the trainer's current parameters.
//
// Points are decoded BatchSize at a time, row i of a chunk going through
// batch slot i. The last chunk is zero-padded and the padding discarded.
func (t *Trainer) Decode(z *tensor.Tensor) (*tensor.Tensor, error) {
	shape := z.Shape()
	if len(shape) != 2 || shape[1] != t.cfg.LatentDim {
		return nil, fmt.Errorf("%w: latent points have shape %v, want [n, %d]", ErrConfiguration, shape, t.cfg.LatentDim)
	}

	n, latent, batch := shape[0], t.cfg.LatentDim, t.cfg.BatchSize
	backend := t.backend.Inner()
	out := tensor.Zeros(tensor.Shape{n, t.cfg.InputDim})
	src, dst := z.Data(), out.Data()

	for start := 0; start < n; start += batch {
		rows := min(batch, n-start)

		chunk := tensor.Zeros(tensor.Shape{batch, latent, 1})
		copy(chunk.Data(), src[start*latent:(start+rows)*latent])

		probs := t.model.Decoder().Forward(backend, chunk).Probs
		copy(dst[start*t.cfg.InputDim:], probs.Data()[:rows*t.cfg.InputDim])

		t.logger.Debug("decoded chunk", "start", start, "rows", rows)
	}
	return out, nil
}

// Mosaic decodes a g×g latent grid and tiles the images into one
// (g·w)×(g·w) image, w = sqrt(InputDim). It requires LatentDim == 2.
func (t *Trainer) Mosaic(g int) (*tensor.Tensor, error) {
	if t.cfg.LatentDim != 2 {
		return nil, fmt.Errorf("%w: mosaic needs a 2-D latent space, have %d", ErrConfiguration, t.cfg.LatentDim)
	}
	if _, err := imageWidth(t.cfg.InputDim); err != nil {
		return nil, err
	}

	grid, err := SampleGrid(g)
	if err != nil {
		return nil, err
	}
	images, err := t.Decode(grid)
	if err != nil {
		return nil, err
	}
	return Assemble(images, g, t.cfg.InputDim)
}
