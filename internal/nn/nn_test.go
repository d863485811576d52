package nn_test

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-vae/internal/autodiff"
	"github.com/born-ml/born-vae/internal/backend/cpu"
	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/serialization"
	"github.com/born-ml/born-vae/internal/tensor"
)

func TestWeightFactory_Shapes(t *testing.T) {
	perSlot := nn.NewWeightFactory(4, 0.1, nn.PerSlot, rand.New(rand.NewSource(0)))
	w, b, err := perSlot.Affine("enc", tensor.Shape{4, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, "enc.w", w.Name())
	assert.Equal(t, "enc.b", b.Name())
	assert.Equal(t, tensor.Shape{4, 3, 5}, w.Tensor().Shape())
	assert.Equal(t, tensor.Shape{4, 3, 1}, b.Tensor().Shape())
	for _, v := range b.Tensor().Data() {
		assert.Zero(t, v)
	}

	shared := nn.NewWeightFactory(4, 0.1, nn.Shared, rand.New(rand.NewSource(0)))
	assert.Equal(t, tensor.Shape{1, 3, 5}, shared.WeightShape(5, 3))
	assert.Equal(t, tensor.Shape{1, 3, 1}, shared.BiasShape(3))

	_, _, err = perSlot.Affine("bad", tensor.Shape{3, 5})
	assert.Error(t, err)
}

func TestWeightFactory_Deterministic(t *testing.T) {
	a := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(42))).Dense("l", 3, 2)
	b := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(42))).Dense("l", 3, 2)
	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())

	// Roughly N(0, 0.1²): nothing beyond six standard deviations.
	for _, v := range a.Weight().Tensor().Data() {
		assert.Less(t, math.Abs(float64(v)), 0.6)
	}
}

func TestDense_Forward(t *testing.T) {
	factory := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0)))
	layer := factory.Dense("d", 2, 2)

	// Slot 0 doubles, slot 1 swaps; biases add 1.
	copy(layer.Weight().Tensor().Data(), []float32{2, 0, 0, 2, 0, 1, 1, 0})
	copy(layer.Bias().Tensor().Data(), []float32{1, 1, 1, 1})

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2, 1})
	require.NoError(t, err)

	out := layer.Forward(cpu.New(), x)
	assert.Equal(t, tensor.Shape{2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{3, 5, 5, 4}, out.Data())

	assert.Panics(t, func() { layer.Forward(cpu.New(), tensor.Zeros(tensor.Shape{2, 3, 1})) })
}

func TestSequential_ChainsAndCollectsParameters(t *testing.T) {
	factory := nn.NewWeightFactory(3, 0.1, nn.Shared, rand.New(rand.NewSource(1)))
	seq := nn.NewSequential(
		factory.Dense("h", 4, 5),
		nn.Tanh,
		factory.Dense("o", 5, 2),
	)

	assert.Equal(t, 3, seq.Len())
	params := seq.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, []string{"h.w", "h.b", "o.w", "o.b"},
		[]string{params[0].Name(), params[1].Name(), params[2].Name(), params[3].Name()})

	out := seq.Forward(cpu.New(), tensor.Ones(tensor.Shape{3, 4, 1}))
	assert.Equal(t, tensor.Shape{3, 2, 1}, out.Shape())
}

func TestActivation_Parse(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want nn.Activation
	}{{"tanh", nn.Tanh}, {"ReLU", nn.ReLU}, {" relu ", nn.ReLU}} {
		got, err := nn.ParseActivation(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := nn.ParseActivation("gelu")
	assert.Error(t, err)

	var a nn.Activation
	require.NoError(t, a.UnmarshalText([]byte("relu")))
	assert.Equal(t, nn.ReLU, a)
	text, err := nn.Tanh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "tanh", string(text))

	s, err := nn.ParseSharing("shared")
	require.NoError(t, err)
	assert.Equal(t, nn.Shared, s)
	_, err = nn.ParseSharing("sometimes")
	assert.Error(t, err)
}

func TestKLDivergence_ZeroAtPrior(t *testing.T) {
	backend := cpu.New()
	mu := tensor.Zeros(tensor.Shape{3, 2, 1})
	logSigmaSq := tensor.Zeros(tensor.Shape{3, 2, 1})
	sigmaSq := tensor.Ones(tensor.Shape{3, 2, 1})

	kl := nn.KLDivergence(backend, mu, logSigmaSq, sigmaSq)
	assert.Equal(t, tensor.Shape{3, 1, 1}, kl.Shape())
	for _, v := range kl.Data() {
		assert.Zero(t, v)
	}
}

func TestKLDivergence_Value(t *testing.T) {
	backend := cpu.New()
	mu, err := tensor.FromSlice([]float32{1, -2}, tensor.Shape{1, 2, 1})
	require.NoError(t, err)
	logSigmaSq := tensor.Zeros(tensor.Shape{1, 2, 1})
	sigmaSq := tensor.Ones(tensor.Shape{1, 2, 1})

	// -0.5 * ((1 + 0 - 1 - 1) + (1 + 0 - 4 - 1)) = 2.5
	kl := nn.KLDivergence(backend, mu, logSigmaSq, sigmaSq)
	assert.InDelta(t, 2.5, kl.Item(), 1e-6)
}

func TestBinaryCrossEntropyWithLogits_Stable(t *testing.T) {
	backend := cpu.New()
	logits, err := tensor.FromSlice([]float32{-50, 50, 0, 3}, tensor.Shape{1, 4, 1})
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{1, 0, 0.5, 1}, tensor.Shape{1, 4, 1})
	require.NoError(t, err)

	got := nn.BinaryCrossEntropyWithLogits(backend, logits, targets)
	require.Equal(t, tensor.Shape{1, 1, 1}, got.Shape())

	// BCE(x, z) = softplus(x) - x*z.
	var want float64
	xs, zs := []float64{-50, 50, 0, 3}, []float64{1, 0, 0.5, 1}
	for i := range xs {
		want += math.Max(xs[i], 0) + math.Log1p(math.Exp(-math.Abs(xs[i]))) - xs[i]*zs[i]
	}
	assert.True(t, got.IsFinite())
	assert.InDelta(t, want, float64(got.Item()), 1e-3)
}

func TestWeightDecay(t *testing.T) {
	backend := cpu.New()
	p1 := nn.NewParameter("a", tensor.Full(tensor.Shape{2}, 2))
	p2 := nn.NewParameter("b", tensor.Full(tensor.Shape{1}, 3))

	assert.Nil(t, nn.WeightDecay(backend, []*nn.Parameter{p1, p2}, 0))
	assert.Nil(t, nn.WeightDecay(backend, []*nn.Parameter{p1, p2}, -1))

	// 0.1/2 * (4 + 4 + 9)
	got := nn.WeightDecay(backend, []*nn.Parameter{p1, p2}, 0.1)
	require.NotNil(t, got)
	assert.InDelta(t, 0.85, got.Item(), 1e-6)
}

func TestWeightDecay_Gradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	p := nn.NewParameter("a", tensor.Full(tensor.Shape{3}, 2))
	loss := nn.WeightDecay(backend, []*nn.Parameter{p}, 0.5)
	grads := autodiff.Backward(loss, backend)

	// d/dp (λ/2)‖p‖² = λp
	assert.Equal(t, []float32{1, 1, 1}, grads[p.Tensor()].Data())
}

func TestLoadStateDict(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2, 1}))
	params := []*nn.Parameter{p}

	err := nn.LoadStateDict(params, map[string]*tensor.Tensor{})
	assert.ErrorIs(t, err, nn.ErrMissingTensor)

	err = nn.LoadStateDict(params, map[string]*tensor.Tensor{"w": tensor.Ones(tensor.Shape{3, 1})})
	var shapeErr *nn.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "w", shapeErr.Name)
	assert.Equal(t, tensor.Shape{2, 1}, shapeErr.Want)
	assert.Equal(t, []float32{0, 0}, p.Tensor().Data(), "failed load leaves values untouched")

	err = nn.LoadStateDict(params, map[string]*tensor.Tensor{
		"w":     tensor.Ones(tensor.Shape{2, 1}),
		"extra": tensor.Ones(tensor.Shape{1}),
	})
	assert.ErrorIs(t, err, nn.ErrUnexpectedTensor)

	require.NoError(t, nn.LoadStateDict(params, map[string]*tensor.Tensor{"w": tensor.Ones(tensor.Shape{2, 1})}))
	assert.Equal(t, []float32{1, 1}, p.Tensor().Data())
}

// counterOptimizer is a minimal OptimizerState holding one scalar slot.
type counterOptimizer struct {
	t *tensor.Tensor
}

func (c *counterOptimizer) StateDict() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{"t": c.t}
}

func (c *counterOptimizer) CheckStateDict(sd map[string]*tensor.Tensor) error {
	src, ok := sd["t"]
	if !ok {
		return fmt.Errorf("%w: %q", nn.ErrMissingTensor, "t")
	}
	if !src.Shape().Equal(c.t.Shape()) {
		return &nn.ShapeError{Name: "t", Want: c.t.Shape(), Got: src.Shape()}
	}
	return nil
}

func (c *counterOptimizer) LoadStateDict(sd map[string]*tensor.Tensor) error {
	if err := c.CheckStateDict(sd); err != nil {
		return err
	}
	return c.t.CopyFrom(sd["t"])
}

// otherOptimizer has the same state layout under a different name.
type otherOptimizer struct {
	counterOptimizer
}

func (o *otherOptimizer) Name() string { return "Other" }

func (c *counterOptimizer) Name() string { return "Counter" }

func (c *counterOptimizer) Hyperparameters() map[string]any { return map[string]any{"lr": 0.5} }

func TestCheckpoint_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	factory := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0)))
	layer := factory.Dense("enc.h", 3, 2)
	opt := &counterOptimizer{t: tensor.Scalar(7)}

	saved := layer.Weight().Tensor().Clone()
	ckpt := &nn.Checkpoint{
		Params:    layer.Parameters(),
		Optimizer: opt,
		Step:      11,
		Loss:      3.5,
		Metadata:  map[string]string{"hidden_dim": "2"},
	}
	require.NoError(t, ckpt.Save(path, serialization.WriteOptions{}))
	assert.NotEmpty(t, ckpt.RunID)

	// Mutate live state after the save.
	layer.Weight().Tensor().Data()[0] += 10
	opt.t.Data()[0] = 99

	loaded, err := nn.LoadCheckpoint(path, layer.Parameters(), opt)
	require.NoError(t, err)
	assert.Equal(t, int64(11), loaded.Step)
	assert.Equal(t, ckpt.RunID, loaded.RunID)
	assert.Equal(t, "2", loaded.Metadata["hidden_dim"])
	assert.Equal(t, saved.Data(), layer.Weight().Tensor().Data())
	assert.Equal(t, float32(7), opt.t.Item())
}

func TestCheckpoint_ShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	small := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0))).Dense("h", 3, 2)
	require.NoError(t, (&nn.Checkpoint{Params: small.Parameters()}).Save(path, serialization.WriteOptions{}))

	big := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0))).Dense("h", 3, 4)
	_, err := nn.LoadCheckpoint(path, big.Parameters(), nil)

	var shapeErr *nn.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "h.w", shapeErr.Name)
}

func TestSplitStateDict(t *testing.T) {
	model, opt := nn.SplitStateDict(map[string]*tensor.Tensor{
		"enc.w":             tensor.Scalar(1),
		"optimizer.m.enc.w": tensor.Scalar(2),
		"optimizer.t":       tensor.Scalar(3),
	})
	assert.Len(t, model, 1)
	assert.Contains(t, opt, "m.enc.w")
	assert.Contains(t, opt, "t")
}

func TestCheckpoint_OptimizerMismatchLeavesStateUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	layer := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0))).Dense("h", 3, 2)
	ckpt := &nn.Checkpoint{Params: layer.Parameters(), Optimizer: &counterOptimizer{t: tensor.Scalar(7)}}
	require.NoError(t, ckpt.Save(path, serialization.WriteOptions{}))

	live := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(5))).Dense("h", 3, 2)
	before := live.Weight().Tensor().Clone()
	opt := &otherOptimizer{counterOptimizer{t: tensor.Scalar(1)}}

	_, err := nn.LoadCheckpoint(path, live.Parameters(), opt)
	require.ErrorIs(t, err, nn.ErrOptimizerMismatch)
	assert.Equal(t, before.Data(), live.Weight().Tensor().Data())
	assert.Equal(t, float32(1), opt.t.Item())

	// Weights alone restore regardless of the optimizer that wrote them.
	_, err = nn.LoadCheckpoint(path, live.Parameters(), nil)
	require.NoError(t, err)
	assert.Equal(t, layer.Weight().Tensor().Data(), live.Weight().Tensor().Data())
}

func TestCheckpoint_BadOptimizerStateLeavesParamsUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	layer := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(0))).Dense("h", 3, 2)
	ckpt := &nn.Checkpoint{Params: layer.Parameters(), Optimizer: &counterOptimizer{t: tensor.Zeros(tensor.Shape{3})}}
	require.NoError(t, ckpt.Save(path, serialization.WriteOptions{}))

	live := nn.NewWeightFactory(2, 0.1, nn.PerSlot, rand.New(rand.NewSource(5))).Dense("h", 3, 2)
	before := live.Weight().Tensor().Clone()

	_, err := nn.LoadCheckpoint(path, live.Parameters(), &counterOptimizer{t: tensor.Scalar(1)})
	var shapeErr *nn.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "t", shapeErr.Name)
	assert.Equal(t, before.Data(), live.Weight().Tensor().Data())
}
