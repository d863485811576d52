package ops

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: eps[1,L,1] * sigma[B,L,1] -> z[B,L,1]  (eps broadcast along dim 0)
//	Backward: grad_z[B,L,1] -> grad_eps[1,L,1]     (sum along dim 0)
func reduceBroadcast(grad *tensor.Tensor, target tensor.Shape, backend tensor.Backend) *tensor.Tensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	if len(target) == 0 {
		return backend.Sum(grad)
	}

	// Leading dimensions the target never had are summed away.
	result := grad
	for len(result.Shape()) > len(target) {
		result = backend.SumDim(result, 0, false)
	}

	for i := range target {
		if target[i] == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(target) {
		result = backend.Reshape(result, target)
	}
	return result
}

// zipWith applies fn element-wise to two same-shaped tensors.
func zipWith(a, b *tensor.Tensor, fn func(x, y float32) float32) *tensor.Tensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("zipWith: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	result := tensor.Zeros(a.Shape())
	out, aData, bData := result.Data(), a.Data(), b.Data()
	for i := range out {
		out[i] = fn(aData[i], bData[i])
	}
	return result
}
