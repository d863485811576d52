package tensor

// Backend defines the operations a compute backend must provide.
//
// Every operation allocates and returns a new tensor; inputs are never
// modified. Shape violations are programming errors and panic.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *Tensor) *Tensor
	Sub(a, b *Tensor) *Tensor
	Mul(a, b *Tensor) *Tensor

	// BatchMatMul multiplies the trailing matrices of 3-D tensors:
	// [B, M, K] @ [B, K, N] -> [B, M, N]. A batch dimension of 1 on either
	// side is broadcast against the other.
	BatchMatMul(a, b *Tensor) *Tensor

	// Shape operations
	Reshape(t *Tensor, newShape Shape) *Tensor
	Transpose(t *Tensor) *Tensor // swap the last two dimensions

	// Scalar operations
	MulScalar(x *Tensor, scalar float32) *Tensor
	AddScalar(x *Tensor, scalar float32) *Tensor

	// Math and activation functions (element-wise)
	Exp(x *Tensor) *Tensor
	Sqrt(x *Tensor) *Tensor
	Square(x *Tensor) *Tensor
	Tanh(x *Tensor) *Tensor
	ReLU(x *Tensor) *Tensor
	Sigmoid(x *Tensor) *Tensor

	// Reductions
	Sum(x *Tensor) *Tensor                           // total sum (scalar result)
	SumDim(x *Tensor, dim int, keepDim bool) *Tensor // sum along dimension
	Mean(x *Tensor) *Tensor                          // mean of all elements (scalar result)

	// SigmoidCrossEntropyWithLogits computes element-wise binary cross-entropy
	// between sigmoid(logits) and labels without evaluating log(sigmoid(x)).
	SigmoidCrossEntropyWithLogits(logits, labels *Tensor) *Tensor

	// Metadata
	Name() string
}
