package ops

import "github.com/born-ml/born-vae/internal/tensor"

// BatchMatMulOp represents a batched matrix multiplication: output = a @ b.
//
// Backward pass:
//   - dL/dA = dL/dC @ B^T
//   - dL/dB = A^T @ dL/dC
//
// An operand with batch dimension 1 was shared by every batch slot, so its
// gradient is the sum of the per-slot gradients.
type BatchMatMulOp struct{ base }

// NewBatchMatMulOp creates a new BatchMatMulOp.
func NewBatchMatMulOp(a, b, output *tensor.Tensor) *BatchMatMulOp {
	return &BatchMatMulOp{base{inputs: []*tensor.Tensor{a, b}, output: output}}
}

// Backward computes gradients for batch matmul.
func (op *BatchMatMulOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]

	gradA := backend.BatchMatMul(grad, backend.Transpose(b))
	gradB := backend.BatchMatMul(backend.Transpose(a), grad)

	return []*tensor.Tensor{
		reduceBroadcast(gradA, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}
