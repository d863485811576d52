package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Activation is an element-wise nonlinearity usable as a Module.
type Activation int

const (
	// Tanh applies tanh(x).
	Tanh Activation = iota
	// ReLU applies max(0, x).
	ReLU
)

// String returns the configuration spelling of a.
func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// ParseActivation parses "tanh" or "relu".
func ParseActivation(s string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tanh", "":
		return Tanh, nil
	case "relu":
		return ReLU, nil
	default:
		return 0, fmt.Errorf("unknown activation %q (want tanh or relu)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	v, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Forward applies the activation.
func (a Activation) Forward(backend tensor.Backend, input *tensor.Tensor) *tensor.Tensor {
	switch a {
	case ReLU:
		return backend.ReLU(input)
	case Tanh:
		return backend.Tanh(input)
	default:
		panic(fmt.Sprintf("unknown activation %d", int(a)))
	}
}

// Parameters returns nil (activations have no trainable parameters).
func (a Activation) Parameters() []*Parameter {
	return nil
}
