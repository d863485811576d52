package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-vae/internal/autodiff"
	"github.com/born-ml/born-vae/internal/backend/cpu"
	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/optim"
	"github.com/born-ml/born-vae/internal/tensor"
)

func scalarParam(name string, v float32) *nn.Parameter {
	return nn.NewParameter(name, tensor.Full(tensor.Shape{1}, v))
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	// On the first step m_hat = g and v_hat = g², so the update is
	// lr * g / (|g| + eps) ≈ lr * sign(g).
	pos := scalarParam("pos", 1)
	neg := scalarParam("neg", 1)
	adam := optim.NewAdam([]*nn.Parameter{pos, neg}, optim.AdamConfig{LR: 0.01})

	adam.Step(map[*tensor.Tensor]*tensor.Tensor{
		pos.Tensor(): tensor.Full(tensor.Shape{1}, 3.5),
		neg.Tensor(): tensor.Full(tensor.Shape{1}, -0.2),
	})

	assert.InDelta(t, 0.99, pos.Tensor().Item(), 1e-6)
	assert.InDelta(t, 1.01, neg.Tensor().Item(), 1e-6)
	assert.Equal(t, 1, adam.GetTimestep())
	assert.NotNil(t, pos.Grad())

	adam.ZeroGrad()
	assert.Nil(t, pos.Grad())
}

func TestAdam_SkipsParametersWithoutGradient(t *testing.T) {
	p := scalarParam("p", 5)
	adam := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})
	adam.Step(map[*tensor.Tensor]*tensor.Tensor{})

	assert.Equal(t, float32(5), p.Tensor().Item())
	assert.Equal(t, 1, adam.GetTimestep())
	assert.Equal(t, float32(0.001), adam.GetLR(), "default learning rate")
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// minimise (x - 3)²
	backend := autodiff.New(cpu.New())
	x := scalarParam("x", 0)
	adam := optim.NewAdam([]*nn.Parameter{x}, optim.AdamConfig{LR: 0.1})

	for range 500 {
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		loss := backend.Sum(backend.Square(backend.AddScalar(x.Tensor(), -3)))
		adam.Step(autodiff.Backward(loss, backend))
	}

	assert.InDelta(t, 3, x.Tensor().Item(), 0.05)
}

func TestAdam_StateDictRoundTrip(t *testing.T) {
	p := nn.NewParameter("enc.w", tensor.Zeros(tensor.Shape{2, 2}))
	adam := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})

	sd := adam.StateDict()
	assert.Contains(t, sd, "m.enc.w")
	assert.Contains(t, sd, "v.enc.w")
	assert.Equal(t, []float32{0, 0}, sd["t"].Data())

	grad := tensor.Full(tensor.Shape{2, 2}, 0.5)
	adam.Step(map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): grad})
	adam.Step(map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): grad})

	saved := map[string]*tensor.Tensor{}
	for k, v := range adam.StateDict() {
		saved[k] = v.Clone()
	}

	restored := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})
	require.NoError(t, restored.LoadStateDict(saved))
	assert.Equal(t, 2, restored.GetTimestep())
	assert.Equal(t, saved["m.enc.w"].Data(), restored.StateDict()["m.enc.w"].Data())

	// Identical state produces identical updates.
	a, b := p.Tensor().Clone(), p.Tensor().Clone()
	pa, pb := nn.NewParameter("enc.w", a), nn.NewParameter("enc.w", b)
	oa := optim.NewAdam([]*nn.Parameter{pa}, optim.AdamConfig{})
	ob := optim.NewAdam([]*nn.Parameter{pb}, optim.AdamConfig{})
	require.NoError(t, oa.LoadStateDict(saved))
	require.NoError(t, ob.LoadStateDict(saved))
	oa.Step(map[*tensor.Tensor]*tensor.Tensor{a: grad})
	ob.Step(map[*tensor.Tensor]*tensor.Tensor{b: grad})
	assert.Equal(t, a.Data(), b.Data())
}

func TestAdam_LoadStateDictErrors(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	adam := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})

	err := adam.LoadStateDict(map[string]*tensor.Tensor{})
	assert.ErrorIs(t, err, nn.ErrMissingTensor)

	err = adam.LoadStateDict(map[string]*tensor.Tensor{
		"m.w": tensor.Zeros(tensor.Shape{3}),
		"v.w": tensor.Zeros(tensor.Shape{2}),
		"t":   tensor.Zeros(tensor.Shape{2}),
	})
	var shapeErr *nn.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestAdam_FailedLoadLeavesStateUntouched(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	adam := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})
	adam.Step(map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): tensor.Full(tensor.Shape{2}, 1)})
	before := adam.StateDict()["m.w"].Clone()

	err := adam.LoadStateDict(map[string]*tensor.Tensor{
		"m.w": tensor.Full(tensor.Shape{2}, 9),
		"v.w": tensor.Zeros(tensor.Shape{3}),
		"t":   tensor.Zeros(tensor.Shape{2}),
	})
	var shapeErr *nn.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "v.w", shapeErr.Name)
	assert.Equal(t, before.Data(), adam.StateDict()["m.w"].Data())
	assert.Equal(t, 1, adam.GetTimestep())
}

func TestTimestep_ExactBeyondFloat32Precision(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{2}))
	want := 1<<24 + 1 // not representable as a float32

	saved := map[string]*tensor.Tensor{
		"m.w": tensor.Zeros(tensor.Shape{2}),
		"v.w": tensor.Zeros(tensor.Shape{2}),
		"t":   mustSlice(t, []float32{1, 1}),
	}
	adam := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{})
	require.NoError(t, adam.LoadStateDict(saved))
	assert.Equal(t, want, adam.GetTimestep())

	adam.Step(map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): tensor.Full(tensor.Shape{2}, 1)})
	assert.Equal(t, []float32{1, 2}, adam.StateDict()["t"].Data())

	sgd := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, sgd.LoadStateDict(map[string]*tensor.Tensor{"t": mustSlice(t, []float32{1, 1})}))
	assert.Equal(t, []float32{1, 1}, sgd.StateDict()["t"].Data())
}

func TestTimestep_RejectsInvalidEncoding(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{1}))
	sgd := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	for _, bad := range [][]float32{{0, -1}, {0, 1 << 24}, {0, 1.5}} {
		err := sgd.LoadStateDict(map[string]*tensor.Tensor{"t": mustSlice(t, bad)})
		assert.Error(t, err, "%v", bad)
	}

	var shapeErr *nn.ShapeError
	err := sgd.LoadStateDict(map[string]*tensor.Tensor{"t": tensor.Scalar(3)})
	assert.ErrorAs(t, err, &shapeErr)
}

func mustSlice(t *testing.T, data []float32) *tensor.Tensor {
	t.Helper()
	out, err := tensor.FromSlice(data, tensor.Shape{len(data)})
	require.NoError(t, err)
	return out
}

func TestSGD_Momentum(t *testing.T) {
	p := scalarParam("p", 1)
	sgd := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	grad := map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): tensor.Full(tensor.Shape{1}, 1)}

	sgd.Step(grad) // v = 1, p = 0.9
	sgd.Step(grad) // v = 1.9, p = 0.71
	assert.InDelta(t, 0.71, p.Tensor().Item(), 1e-6)

	sd := sgd.StateDict()
	assert.InDelta(t, 1.9, sd["velocity.p"].Item(), 1e-6)
	assert.Equal(t, []float32{0, 2}, sd["t"].Data())

	fresh := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, fresh.LoadStateDict(sd))
	assert.Equal(t, "SGD", fresh.Name())
}

func TestSGD_Plain(t *testing.T) {
	p := scalarParam("p", 1)
	sgd := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.5})
	sgd.Step(map[*tensor.Tensor]*tensor.Tensor{p.Tensor(): tensor.Full(tensor.Shape{1}, 2)})
	assert.Equal(t, float32(0), p.Tensor().Item())
	assert.NotContains(t, sgd.StateDict(), "velocity.p")
}

func TestOptimizersSatisfyInterface(t *testing.T) {
	var _ optim.Optimizer = optim.NewAdam(nil, optim.AdamConfig{})
	var _ optim.Optimizer = optim.NewSGD(nil, optim.SGDConfig{})
}
