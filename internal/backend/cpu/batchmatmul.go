package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/born-vae/internal/parallel"
	"github.com/born-ml/born-vae/internal/tensor"
)

// BatchMatMul performs batched matrix multiplication of 3-D tensors.
//
//	[B, M, K] @ [B, K, N] -> [B, M, N]
//	[1, M, K] @ [B, K, N] -> [B, M, N]  (left operand shared by every batch)
//	[B, M, K] @ [1, K, N] -> [B, M, N]  (right operand shared by every batch)
//
// Each batch slice is multiplied with a single-precision GEMM. Slices are
// independent and may run on separate goroutines.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.Tensor) *tensor.Tensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 3 || len(bShape) != 3 {
		panic(fmt.Sprintf("BatchMatMul: inputs must be 3D, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k1 := aShape[1], aShape[2]
	k2, n := bShape[1], bShape[2]
	if k1 != k2 {
		panic(fmt.Sprintf("BatchMatMul: inner dimension mismatch: %d vs %d", k1, k2))
	}

	batch := aShape[0]
	switch {
	case aShape[0] == bShape[0]:
	case aShape[0] == 1:
		batch = bShape[0]
	case bShape[0] == 1:
	default:
		panic(fmt.Sprintf("BatchMatMul: batch dimension mismatch: %d vs %d", aShape[0], bShape[0]))
	}

	aStep, bStep := m*k1, k2*n
	if aShape[0] == 1 {
		aStep = 0
	}
	if bShape[0] == 1 {
		bStep = 0
	}

	result := tensor.Zeros(tensor.Shape{batch, m, n})
	aData, bData, out := a.Data(), b.Data(), result.Data()

	parallel.For(batch, func(i int) {
		ga := blas32.General{Rows: m, Cols: k1, Stride: k1, Data: aData[i*aStep : i*aStep+m*k1]}
		gb := blas32.General{Rows: k2, Cols: n, Stride: n, Data: bData[i*bStep : i*bStep+k2*n]}
		gc := blas32.General{Rows: m, Cols: n, Stride: n, Data: out[i*m*n : (i+1)*m*n]}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, ga, gb, 0, gc)
	}, cpu.parallel.ForCost(m*k1*n))

	return result
}
