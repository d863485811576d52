package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Scalar creates a 0-D tensor holding value.
func Scalar(value float32) *Tensor {
	return Full(Shape{}, value)
}

// Randn creates a tensor with values drawn from N(0, std²) using rng.
//
// The generator is passed in explicitly so that a seeded run reproduces the
// same values; there is no package-level random state.
func Randn(shape Shape, std float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64() * std)
	}
	return t
}
