package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-vae/internal/parallel"
	"github.com/born-ml/born-vae/internal/tensor"
)

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestAddBroadcastAcrossBatch(t *testing.T) {
	backend := New()

	// [2, 3, 1] + [1, 3, 1]: the noise-vector broadcast used by the sampler.
	a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3, 1})
	b := mustTensor(t, []float32{10, 20, 30}, tensor.Shape{1, 3, 1})

	out := backend.Add(a, b)
	assert.Equal(t, tensor.Shape{2, 3, 1}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.Data())

	// Inputs are never modified.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.Data())
}

func TestMulScalarTensorBroadcast(t *testing.T) {
	backend := New()
	a := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	out := backend.Mul(a, tensor.Scalar(3))
	assert.Equal(t, []float32{3, 6, 9, 12}, out.Data())
}

func TestBroadcastIncompatiblePanics(t *testing.T) {
	backend := New()
	a := tensor.Zeros(tensor.Shape{4, 3, 1})
	b := tensor.Zeros(tensor.Shape{4, 2, 1})
	assert.Panics(t, func() { backend.Sub(a, b) })
}

func TestBatchMatMulPerSlot(t *testing.T) {
	backend := New()

	// Two batch slots, each with its own 2x2 matrix.
	w := mustTensor(t, []float32{
		1, 2,
		3, 4,

		0, 1,
		1, 0,
	}, tensor.Shape{2, 2, 2})
	x := mustTensor(t, []float32{1, 1, 5, 7}, tensor.Shape{2, 2, 1})

	out := backend.BatchMatMul(w, x)
	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{3, 7, 7, 5}, out.Data())
}

func TestBatchMatMulSharedLeftOperand(t *testing.T) {
	backend := New()

	w := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 2, 2})
	x := mustTensor(t, []float32{1, 0, 0, 1, 1, 1}, tensor.Shape{3, 2, 1})

	out := backend.BatchMatMul(w, x)
	assert.Equal(t, tensor.Shape{3, 2, 1}, out.Shape())
	assert.Equal(t, []float32{1, 3, 2, 4, 3, 7}, out.Data())
}

func TestBatchMatMulParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	w := tensor.Randn(tensor.Shape{64, 32, 48}, 1, rng)
	x := tensor.Randn(tensor.Shape{64, 48, 1}, 1, rng)

	sequential := (&CPUBackend{}).BatchMatMul(w, x)
	concurrent := (&CPUBackend{parallel: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}}).BatchMatMul(w, x)

	assert.Equal(t, sequential.Data(), concurrent.Data())
}

func TestBatchMatMulInnerMismatchPanics(t *testing.T) {
	backend := New()
	assert.Panics(t, func() {
		backend.BatchMatMul(tensor.Zeros(tensor.Shape{1, 2, 3}), tensor.Zeros(tensor.Shape{1, 2, 1}))
	})
}

func TestTranspose(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{1, 2, 3})

	out := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{1, 3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestSumDim(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3, 1})

	kept := backend.SumDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1, 1}, kept.Shape())
	assert.Equal(t, []float32{6, 15}, kept.Data())

	dropped := backend.SumDim(x, 0, false)
	assert.Equal(t, tensor.Shape{3, 1}, dropped.Shape())
	assert.Equal(t, []float32{5, 7, 9}, dropped.Data())
}

func TestSumAndMean(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{4})

	assert.Equal(t, float32(10), backend.Sum(x).Item())
	assert.Equal(t, float32(2.5), backend.Mean(x).Item())
	assert.Empty(t, backend.Mean(x).Shape())
}

func TestSigmoidStableAtExtremes(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{-100, 0, 100}, tensor.Shape{3})

	out := backend.Sigmoid(x).Data()
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.Equal(t, float32(0.5), out[1])
	assert.Equal(t, float32(1), out[2])
}

func TestSigmoidCrossEntropyMatchesReference(t *testing.T) {
	backend := New()

	logits := []float32{-50, -10, -1, -0.25, 0, 0.25, 1, 10, 50}
	labels := []float32{0, 0.5, 1, 0.3, 0.5, 0.7, 0, 1, 0.5}
	out := backend.SigmoidCrossEntropyWithLogits(
		mustTensor(t, logits, tensor.Shape{len(logits)}),
		mustTensor(t, labels, tensor.Shape{len(labels)}),
	).Data()

	for i := range logits {
		x, z := float64(logits[i]), float64(labels[i])
		// -z*log(σ(x)) - (1-z)*log(1-σ(x)) with log σ(x) = -softplus(-x).
		want := z*softplus(-x) + (1-z)*softplus(x)

		require.False(t, math.IsNaN(float64(out[i])) || math.IsInf(float64(out[i]), 0), "logit %v", x)
		assert.InDelta(t, want, float64(out[i]), 1e-4*math.Max(1, want), "logit %v label %v", x, z)
	}
}

// softplus computes log(1 + e^x) in float64 without overflow.
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func TestActivations(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{-2, 0, 2}, tensor.Shape{3})

	assert.Equal(t, []float32{0, 0, 2}, backend.ReLU(x).Data())

	th := backend.Tanh(x).Data()
	assert.InDelta(t, math.Tanh(-2), th[0], 1e-6)
	assert.InDelta(t, 0, th[1], 0)

	assert.Equal(t, []float32{4, 0, 4}, backend.Square(x).Data())
	assert.InDelta(t, math.Exp(2), backend.Exp(x).Data()[2], 1e-4)
}

func TestReshapeCopies(t *testing.T) {
	backend := New()
	x := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	out := backend.Reshape(x, tensor.Shape{4, 1})
	out.Data()[0] = 99

	assert.Equal(t, tensor.Shape{4, 1}, out.Shape())
	assert.Equal(t, float32(1), x.Data()[0])
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{3}) })
}
