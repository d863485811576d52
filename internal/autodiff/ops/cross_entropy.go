package ops

import "github.com/born-ml/born-vae/internal/tensor"

// SigmoidCrossEntropyOp represents element-wise binary cross-entropy between
// sigmoid(logits) and labels, computed from logits.
//
// Backward pass: dL/dlogits = σ(logits) - labels.
// Labels are treated as constants and receive no gradient.
type SigmoidCrossEntropyOp struct{ base }

// NewSigmoidCrossEntropyOp creates a new SigmoidCrossEntropyOp.
func NewSigmoidCrossEntropyOp(logits, labels, output *tensor.Tensor) *SigmoidCrossEntropyOp {
	return &SigmoidCrossEntropyOp{base{inputs: []*tensor.Tensor{logits, labels}, output: output}}
}

// Backward computes grad * (σ(logits) - labels).
func (op *SigmoidCrossEntropyOp) Backward(grad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	logits, labels := op.inputs[0], op.inputs[1]
	diff := backend.Sub(backend.Sigmoid(logits), labels)
	return []*tensor.Tensor{
		reduceBroadcast(backend.Mul(grad, diff), logits.Shape(), backend),
		nil,
	}
}
