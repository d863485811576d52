package nn

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Dense implements a batched fully connected layer.
//
// Performs the transformation: y = W @ x + b
// where:
//   - x is the input with shape [batch, in_features, 1]
//   - W is the weight with shape [batch, out_features, in_features]
//     (or [1, out_features, in_features] when shared)
//   - b is the bias with shape [batch, out_features, 1] (or [1, out_features, 1])
//   - y is the output with shape [batch, out_features, 1]
//
// Dense layers are created through WeightFactory.Dense.
type Dense struct {
	name        string
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
}

// Forward computes W @ x + b.
func (d *Dense) Forward(backend tensor.Backend, input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 3 || shape[1] != d.inFeatures || shape[2] != 1 {
		panic(fmt.Sprintf("Dense(%s).Forward: expected input [batch, %d, 1], got %v", d.name, d.inFeatures, shape))
	}

	out := backend.BatchMatMul(d.weight.Tensor(), input)
	return backend.Add(out, d.bias.Tensor())
}

// Parameters returns [weight, bias].
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// Name returns the layer's parameter prefix.
func (d *Dense) Name() string {
	return d.name
}

// Weight returns the weight parameter.
func (d *Dense) Weight() *Parameter {
	return d.weight
}

// Bias returns the bias parameter.
func (d *Dense) Bias() *Parameter {
	return d.bias
}

// InFeatures returns the number of input features.
func (d *Dense) InFeatures() int {
	return d.inFeatures
}

// OutFeatures returns the number of output features.
func (d *Dense) OutFeatures() int {
	return d.outFeatures
}
