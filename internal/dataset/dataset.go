// Package dataset provides batch sources for VAE training.
//
// Sources return batches as [n, dim] tensors. InMemory walks a fixed set of
// examples in a shuffled order that is redrawn at every epoch; Constant
// repeats a single value and serves smoke tests.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/born-vae/internal/tensor"
)

// InMemory serves shuffled mini-batches from examples held in memory.
//
// A batch that crosses an epoch boundary takes the remaining examples of
// the current epoch, reshuffles, and fills up from the next epoch.
type InMemory struct {
	data   []float32
	count  int
	dim    int
	order  []int
	pos    int
	epochs int
	rng    *rand.Rand
}

// NewInMemory wraps count examples of dim values each. data is not copied
// and must not be modified while the dataset is in use. The order of every
// epoch is drawn from seed.
func NewInMemory(data []float32, count, dim int, seed int64) (*InMemory, error) {
	if count <= 0 || dim <= 0 {
		return nil, fmt.Errorf("dataset: count and dim must be positive, got %d and %d", count, dim)
	}
	if len(data) != count*dim {
		return nil, fmt.Errorf("dataset: %d values for %d examples of %d", len(data), count, dim)
	}

	d := &InMemory{
		data:  data,
		count: count,
		dim:   dim,
		order: make([]int, count),
		rng:   rand.New(rand.NewSource(seed)),
	}
	for i := range d.order {
		d.order[i] = i
	}
	d.shuffle()
	return d, nil
}

// FromMNIST wraps the images of m.
func FromMNIST(m *MNIST, seed int64) (*InMemory, error) {
	return NewInMemory(m.Images, m.Count, m.Dim, seed)
}

// Len returns the number of examples.
func (d *InMemory) Len() int {
	return d.count
}

// Dim returns the number of values per example.
func (d *InMemory) Dim() int {
	return d.dim
}

// Epochs returns the number of completed passes over the data.
func (d *InMemory) Epochs() int {
	return d.epochs
}

// NextBatch returns the next n examples as a [n, dim] tensor.
func (d *InMemory) NextBatch(n int) (*tensor.Tensor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", n)
	}

	out := make([]float32, 0, n*d.dim)
	for len(out) < n*d.dim {
		if d.pos == d.count {
			d.epochs++
			d.pos = 0
			d.shuffle()
		}
		idx := d.order[d.pos]
		out = append(out, d.data[idx*d.dim:(idx+1)*d.dim]...)
		d.pos++
	}
	return tensor.FromSlice(out, tensor.Shape{n, d.dim})
}

func (d *InMemory) shuffle() {
	d.rng.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
}

// Constant returns batches filled with a single value.
type Constant struct {
	Value float32
	Dim   int
}

// NextBatch returns a [n, Dim] tensor of Value.
func (c Constant) NextBatch(n int) (*tensor.Tensor, error) {
	if n <= 0 || c.Dim <= 0 {
		return nil, fmt.Errorf("dataset: invalid constant batch [%d, %d]", n, c.Dim)
	}
	return tensor.Full(tensor.Shape{n, c.Dim}, c.Value), nil
}
