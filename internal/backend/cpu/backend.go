// Package cpu implements the CPU backend: broadcasting element-wise kernels,
// BLAS-backed batched matrix multiplication, reductions, and activations.
package cpu

import (
	"fmt"

	"github.com/born-ml/born-vae/internal/parallel"
	"github.com/born-ml/born-vae/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU.
//
// All kernels are deterministic: the same inputs always produce bit-identical
// outputs, which the seeded training run relies on.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a new CPU backend that spreads batched kernels over all CPUs.
func New() *CPUBackend {
	return &CPUBackend{
		parallel: parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	return broadcastBinary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with NumPy-style broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.Tensor) *tensor.Tensor {
	return broadcastBinary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with NumPy-style broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	return broadcastBinary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// broadcastBinary applies fn element-wise over the broadcast shape of a and b.
func broadcastBinary(name string, a, b *tensor.Tensor, fn func(x, y float32) float32) *tensor.Tensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := tensor.Zeros(outShape)
	out, aData, bData := result.Data(), a.Data(), b.Data()

	// Fast path: identical shapes
	if !needsBroadcast {
		for i := range out {
			out[i] = fn(aData[i], bData[i])
		}
		return result
	}

	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()

	for i := range out {
		ai, bi, rem := 0, 0, i
		for d := range outShape {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			ai += coord * aStrides[d]
			bi += coord * bStrides[d]
		}
		out[i] = fn(aData[ai], bData[bi])
	}

	return result
}

// broadcastStrides returns the strides of shape right-aligned to out,
// with stride 0 on every broadcast dimension.
func broadcastStrides(shape, out tensor.Shape) []int {
	strides := make([]int, len(out))
	src := shape.ComputeStrides()
	offset := len(out) - len(shape)
	for d := range shape {
		if shape[d] != 1 {
			strides[d+offset] = src[d]
		}
	}
	return strides
}
