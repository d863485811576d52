package vae

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/born-vae/internal/tensor"
)

// SampleGrid returns g² latent points ([g², 2]) spaced by standard-normal
// quantiles.
//
// g+2 probabilities are spaced evenly over [0, 1]; the endpoints are dropped
// and the remaining g are mapped through the inverse normal CDF to values
// q_0 < ... < q_{g-1}. Point i*g+j is (q_j, q_i), so the first coordinate
// varies fastest.
func SampleGrid(g int) (*tensor.Tensor, error) {
	if g <= 0 {
		return nil, fmt.Errorf("%w: grid width must be positive, got %d", ErrConfiguration, g)
	}

	probs := floats.Span(make([]float64, g+2), 0, 1)[1 : g+1]
	quantiles := make([]float32, g)
	for i, p := range probs {
		quantiles[i] = float32(distuv.UnitNormal.Quantile(p))
	}

	points := make([]float32, 0, 2*g*g)
	for i := 0; i < g; i++ {
		for j := 0; j < g; j++ {
			points = append(points, quantiles[j], quantiles[i])
		}
	}
	return tensor.FromSlice(points, tensor.Shape{g * g, 2})
}
