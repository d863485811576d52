package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/born-vae/internal/tensor"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to a SafeTensors file at path so trained
// weights can be loaded by other frameworks.
func WriteSafeTensors(path string, stateDict map[string]*tensor.Tensor, metadata map[string]string, opts WriteOptions) (err error) {
	//nolint:gosec // G304: export paths come from the user
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return EncodeSafeTensors(file, stateDict, metadata, opts)
}

// EncodeSafeTensors writes the SafeTensors encoding of stateDict to out.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name.
func EncodeSafeTensors(out io.Writer, stateDict map[string]*tensor.Tensor, metadata map[string]string, opts WriteOptions) error {
	dtype, stDType := DTypeFloat32, "F32"
	if opts.Half {
		dtype, stDType = DTypeFloat16, "F16"
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	payloads := make([][]byte, len(names))
	var offset int64
	for i, name := range names {
		t := stateDict[name]
		payload, err := encodeTensor(t, dtype)
		if err != nil {
			return fmt.Errorf("failed to encode tensor %s: %w", name, err)
		}
		payloads[i] = payload

		shape := make([]int64, len(t.Shape()))
		for j, d := range t.Shape() {
			shape[j] = int64(d)
		}
		header[name] = SafeTensorHeader{
			DType:       stDType,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + int64(len(payload))},
		}
		offset += int64(len(payload))
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(out, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := out.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, payload := range payloads {
		if _, err := out.Write(payload); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", names[i], err)
		}
	}
	return nil
}
