package optim

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Moments are allocated up front for every parameter so that StateDict is
// complete even before the first step.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int                              // Timestep for bias correction
	m      map[*nn.Parameter]*tensor.Tensor // First moment estimates
	v      map[*nn.Parameter]*tensor.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	a := &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*tensor.Tensor, len(params)),
		v:      make(map[*nn.Parameter]*tensor.Tensor, len(params)),
	}
	for _, p := range params {
		a.m[p] = tensor.Zeros(p.Tensor().Shape())
		a.v[p] = tensor.Zeros(p.Tensor().Shape())
	}
	return a
}

// Step performs a single optimization step using Adam algorithm.
//
// Parameters with no gradient are skipped, but the timestep still advances.
func (a *Adam) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	a.t++

	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		param.SetGrad(grad)
		a.updateParameter(param, grad, biasCorrection1, biasCorrection2)
	}
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam) updateParameter(param *nn.Parameter, grad *tensor.Tensor, biasCorrection1, biasCorrection2 float32) {
	gradData := grad.Data()
	mData := a.m[param].Data()
	vData := a.v[param].Data()
	paramData := param.Tensor().Data()

	for i := range paramData {
		g := gradData[i]

		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2

		paramData[i] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}

// Name returns "Adam".
func (a *Adam) Name() string {
	return "Adam"
}

// Hyperparameters returns the optimizer configuration for checkpoint headers.
func (a *Adam) Hyperparameters() map[string]any {
	return map[string]any{
		"lr":    a.lr,
		"beta1": a.beta1,
		"beta2": a.beta2,
		"eps":   a.eps,
	}
}

// StateDict exports the moments and timestep.
//
// State keys: "m.{param}", "v.{param}" and "t". The timestep is stored as
// two float32 parts so it stays exact beyond 2^24 steps.
func (a *Adam) StateDict() map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor, 2*len(a.params)+1)
	for _, p := range a.params {
		stateDict["m."+p.Name()] = a.m[p]
		stateDict["v."+p.Name()] = a.v[p]
	}
	stateDict["t"] = timestepTensor(a.t)
	return stateDict
}

// CheckStateDict reports whether stateDict holds every moment with the right
// shape and a valid timestep, without modifying the optimizer.
func (a *Adam) CheckStateDict(stateDict map[string]*tensor.Tensor) error {
	for _, p := range a.params {
		if err := checkSlot(stateDict, "m."+p.Name(), a.m[p]); err != nil {
			return err
		}
		if err := checkSlot(stateDict, "v."+p.Name(), a.v[p]); err != nil {
			return err
		}
	}
	_, err := readTimestep(stateDict, "t")
	return err
}

// LoadStateDict restores moments and timestep saved by StateDict.
// stateDict is checked first; on error the optimizer is unchanged.
func (a *Adam) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	if err := a.CheckStateDict(stateDict); err != nil {
		return err
	}
	for _, p := range a.params {
		if err := a.m[p].CopyFrom(stateDict["m."+p.Name()]); err != nil {
			return err
		}
		if err := a.v[p].CopyFrom(stateDict["v."+p.Name()]); err != nil {
			return err
		}
	}
	a.t, _ = readTimestep(stateDict, "t")
	return nil
}
