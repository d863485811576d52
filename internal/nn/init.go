package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Sharing selects how dense-layer parameters are laid out across the batch.
type Sharing int

const (
	// PerSlot gives every batch position its own weight matrix and bias:
	// weights [batch, out, in], biases [batch, out, 1].
	PerSlot Sharing = iota
	// Shared uses one weight matrix and bias broadcast over the batch:
	// weights [1, out, in], biases [1, out, 1].
	Shared
)

// String returns the configuration spelling of s.
func (s Sharing) String() string {
	switch s {
	case PerSlot:
		return "per-slot"
	case Shared:
		return "shared"
	default:
		return fmt.Sprintf("Sharing(%d)", int(s))
	}
}

// ParseSharing parses "per-slot" or "shared".
func ParseSharing(s string) (Sharing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per-slot", "perslot", "":
		return PerSlot, nil
	case "shared":
		return Shared, nil
	default:
		return 0, fmt.Errorf("unknown parameter sharing %q (want per-slot or shared)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Sharing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sharing) UnmarshalText(text []byte) error {
	v, err := ParseSharing(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// WeightFactory allocates the trainable tensors of dense affine layers.
//
// Weights are drawn from N(0, std²) using the factory's generator and biases
// start at zero. The generator is owned by the caller; creating layers in
// the same order from the same seed reproduces the same weights.
type WeightFactory struct {
	batch   int
	std     float64
	sharing Sharing
	rng     *rand.Rand
}

// NewWeightFactory creates a factory for layers that process batches of the
// given size.
func NewWeightFactory(batch int, std float64, sharing Sharing, rng *rand.Rand) *WeightFactory {
	return &WeightFactory{
		batch:   batch,
		std:     std,
		sharing: sharing,
		rng:     rng,
	}
}

// LeadingDim returns the batch dimension of the parameters this factory
// creates: the batch size for PerSlot, 1 for Shared.
func (f *WeightFactory) LeadingDim() int {
	if f.sharing == Shared {
		return 1
	}
	return f.batch
}

// WeightShape returns the weight shape for a layer mapping in to out features.
func (f *WeightFactory) WeightShape(in, out int) tensor.Shape {
	return tensor.Shape{f.LeadingDim(), out, in}
}

// BiasShape returns the bias shape for a layer with out features.
func (f *WeightFactory) BiasShape(out int) tensor.Shape {
	return tensor.Shape{f.LeadingDim(), out, 1}
}

// Affine allocates a weight of the given [batch, out, in] shape and the
// matching [batch, out, 1] zero bias, named name+".w" and name+".b".
func (f *WeightFactory) Affine(name string, shape tensor.Shape) (weight, bias *Parameter, err error) {
	if len(shape) != 3 {
		return nil, nil, fmt.Errorf("affine %s: weight shape must be [batch, out, in], got %v", name, shape)
	}
	if err := shape.Validate(); err != nil {
		return nil, nil, fmt.Errorf("affine %s: %w", name, err)
	}

	w := tensor.Randn(shape, f.std, f.rng)
	b := tensor.Zeros(tensor.Shape{shape[0], shape[1], 1})

	return NewParameter(name+".w", w), NewParameter(name+".b", b), nil
}

// Dense creates a Dense layer mapping in to out features.
// Panics if the dimensions are not positive.
func (f *WeightFactory) Dense(name string, in, out int) *Dense {
	weight, bias, err := f.Affine(name, f.WeightShape(in, out))
	if err != nil {
		panic(err)
	}
	return &Dense{
		name:        name,
		inFeatures:  in,
		outFeatures: out,
		weight:      weight,
		bias:        bias,
	}
}
