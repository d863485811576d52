package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/born-ml/born-vae/internal/tensor"
)

// WriteOptions controls how tensor payloads are stored.
type WriteOptions struct {
	Half bool // Store payloads as IEEE 754 half precision
}

// Writer writes a state dictionary to a .bvae file.
//
// Data goes to a temporary file next to the destination; Close renames it
// into place so an interrupted save never leaves a truncated checkpoint.
type Writer struct {
	path    string
	file    *os.File
	written bool
	closed  bool
}

// Create opens a writer whose output will appear at path on Close.
func Create(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{path: path, file: file}, nil
}

// WriteStateDict writes all tensors in stateDict with the given header.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.Tensor, header Header, opts WriteOptions) error {
	if w.closed {
		return ErrClosed
	}
	if err := WriteTo(w.file, stateDict, header, opts); err != nil {
		return err
	}
	w.written = true
	return nil
}

// Close flushes the file and moves it to its destination.
// If nothing was written the temporary file is discarded.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if !w.written {
		return w.Abort()
	}
	w.closed = true

	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(w.file.Name())
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.file.Name())
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		_ = os.Remove(w.file.Name())
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Abort discards everything written so far.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	closeErr := w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil {
		return err
	}
	return closeErr
}

// WriteTo encodes the state dictionary in .bvae format to out.
//
// The header's Tensors, FormatVersion and CreatedAt fields are filled in
// by the writer; everything else is written as given.
func WriteTo(out io.Writer, stateDict map[string]*tensor.Tensor, header Header, opts WriteOptions) error {
	dtype := DTypeFloat32
	if opts.Half {
		dtype = DTypeFloat16
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Encode payloads first; the checksum covers the whole data section.
	var data bytes.Buffer
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		t := stateDict[name]
		payload, err := encodeTensor(t, dtype)
		if err != nil {
			return fmt.Errorf("failed to encode tensor %s: %w", name, err)
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtype,
			Shape:  []int(t.Shape().Clone()),
			Offset: int64(data.Len()),
			Size:   int64(len(payload)),
		})
		data.Write(payload)
	}

	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil && header.CheckpointMeta.OptimizerType != "" {
		flags |= FlagHasOptimizer
	}
	if opts.Half {
		flags |= FlagHalfPrecision
	}

	checksum := ComputeChecksum(data.Bytes())

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(data.Len()))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := out.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := out.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	padding := alignedDataOffset(int64(len(headerJSON))) - int64(FixedHeaderSize+len(headerJSON))
	if padding > 0 {
		if _, err := out.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := out.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
