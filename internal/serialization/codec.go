package serialization

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/born-vae/internal/tensor"
)

// encodeTensor converts t's elements to little-endian bytes of the given dtype.
func encodeTensor(t *tensor.Tensor, dtype string) ([]byte, error) {
	data := t.Data()
	switch dtype {
	case DTypeFloat32:
		out := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}
		return out, nil
	case DTypeFloat16:
		out := make([]byte, 2*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint16(out[2*i:], float16.Fromfloat32(v).Bits())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDType, dtype)
	}
}

// decodeTensor builds a float32 tensor from stored bytes.
func decodeTensor(meta TensorMeta, raw []byte) (*tensor.Tensor, error) {
	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", meta.Name, err)
	}

	elemSize, err := dtypeSize(meta.DType)
	if err != nil {
		return nil, err
	}
	n := shape.NumElements()
	if len(raw) != n*elemSize {
		return nil, &ValidationError{
			Err:     ErrOutOfBounds,
			Tensor:  meta.Name,
			Details: fmt.Sprintf("%d bytes for %d %s elements", len(raw), n, meta.DType),
		}
	}

	values := make([]float32, n)
	switch meta.DType {
	case DTypeFloat32:
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case DTypeFloat16:
		for i := range values {
			values[i] = float16.Frombits(binary.LittleEndian.Uint16(raw[2*i:])).Float32()
		}
	}

	return tensor.FromSlice(values, shape)
}
