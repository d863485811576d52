package optim

import (
	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float32
	momentum   float32
	t          int
	velocities map[*nn.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	s := &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Tensor),
	}
	if s.momentum != 0 {
		for _, p := range params {
			s.velocities[p] = tensor.Zeros(p.Tensor().Shape())
		}
	}
	return s
}

// Step performs a single optimization step.
// Parameters with no gradient are skipped.
func (s *SGD) Step(grads map[*tensor.Tensor]*tensor.Tensor) {
	s.t++
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		param.SetGrad(grad)

		paramData, gradData := param.Tensor().Data(), grad.Data()
		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
			continue
		}

		velocity := s.velocities[param].Data()
		for i := range paramData {
			velocity[i] = s.momentum*velocity[i] + gradData[i]
			paramData[i] -= s.lr * velocity[i]
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// Name returns "SGD".
func (s *SGD) Name() string {
	return "SGD"
}

// Hyperparameters returns the optimizer configuration for checkpoint headers.
func (s *SGD) Hyperparameters() map[string]any {
	return map[string]any{"lr": s.lr, "momentum": s.momentum}
}

// StateDict returns the optimizer state for serialization.
//
// With momentum, velocity buffers are exported as "velocity.{param}".
// The step count is always exported as "t", in the two-part encoding Adam
// uses.
func (s *SGD) StateDict() map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor, len(s.velocities)+1)
	for _, p := range s.params {
		if v, ok := s.velocities[p]; ok {
			stateDict["velocity."+p.Name()] = v
		}
	}
	stateDict["t"] = timestepTensor(s.t)
	return stateDict
}

// CheckStateDict reports whether stateDict fits the optimizer without
// modifying it.
func (s *SGD) CheckStateDict(stateDict map[string]*tensor.Tensor) error {
	for _, p := range s.params {
		if v, ok := s.velocities[p]; ok {
			if err := checkSlot(stateDict, "velocity."+p.Name(), v); err != nil {
				return err
			}
		}
	}
	_, err := readTimestep(stateDict, "t")
	return err
}

// LoadStateDict restores velocity buffers and step count.
// stateDict is checked first; on error the optimizer is unchanged.
func (s *SGD) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	if err := s.CheckStateDict(stateDict); err != nil {
		return err
	}
	for _, p := range s.params {
		if v, ok := s.velocities[p]; ok {
			if err := v.CopyFrom(stateDict["velocity."+p.Name()]); err != nil {
				return err
			}
		}
	}
	s.t, _ = readTimestep(stateDict, "t")
	return nil
}
