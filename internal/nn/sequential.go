package nn

import (
	"github.com/born-ml/born-vae/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	decoder := nn.NewSequential(
//	    factory.Dense("decoder.hidden", latent, hidden),
//	    nn.Tanh,
//	    factory.Dense("decoder.out", hidden, input),
//	)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(backend tensor.Backend, input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(backend, output)
	}
	return output
}

// Parameters returns all parameters from all modules in order.
func (s *Sequential) Parameters() []*Parameter {
	params := make([]*Parameter, 0)
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at index i.
func (s *Sequential) Module(i int) Module {
	return s.modules[i]
}
