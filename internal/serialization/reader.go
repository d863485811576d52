package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/born-vae/internal/tensor"
)

// Reader reads tensors from a .bvae file.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	dataOffset int64    // Offset where tensor data starts
	dataSize   int64    // Size of the data section
	checksum   [32]byte // SHA-256 checksum of the data section
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Open opens a .bvae file with strict validation.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions opens a .bvae file with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: checkpoint paths come from the user
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}
	if err := r.parse(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// parse reads the fixed header and JSON header, then validates the data section.
func (r *Reader) parse() error {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixed); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: file too short", ErrInvalidMagic)
		}
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	headerSize, err := r.parseFixedHeader(fixed)
	if err != nil {
		return err
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("%w: reading header: %v", ErrTruncated, err)
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = alignedDataOffset(headerSize)

	stat, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < r.dataOffset+r.dataSize {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, r.dataOffset+r.dataSize, stat.Size())
	}

	if err := ValidateHeader(&r.header, r.dataSize, r.opts.ValidationLevel); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if !r.opts.SkipChecksumValidation {
		if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to tensor data: %w", err)
		}
		computed, err := ComputeChecksumReader(r.file, r.dataSize)
		if err != nil {
			return fmt.Errorf("failed to read tensor data for checksum: %w", err)
		}
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			return err
		}
	}

	return nil
}

// parseFixedHeader decodes the 64-byte prefix and returns the JSON header size.
func (r *Reader) parseFixedHeader(fixed []byte) (int64, error) {
	if string(fixed[0:4]) != MagicBytes {
		return 0, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return 0, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(fixed[8:12])
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return 0, ErrHeaderTooLarge
	}
	if dataSize > MaxDataSize {
		return 0, &ValidationError{Err: ErrOutOfBounds, Details: fmt.Sprintf("data size %d exceeds %d", dataSize, int64(MaxDataSize))}
	}

	//nolint:gosec // G115: both sizes are bounded above
	r.dataSize = int64(dataSize)
	//nolint:gosec // G115: bounded by MaxHeaderSize
	return int64(headerSize), nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Flags returns the flag bits from the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// DataSize returns the size of the tensor data section in bytes.
func (r *Reader) DataSize() int64 {
	return r.dataSize
}

// TensorNames returns the names of all tensors in file order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			meta := r.header.Tensors[i]
			return &meta, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
}

// ReadTensor loads a single tensor, widening float16 payloads to float32.
func (r *Reader) ReadTensor(name string) (*tensor.Tensor, error) {
	if r.closed {
		return nil, ErrClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(raw, r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}

	return decodeTensor(*meta, raw)
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.Tensor, error) {
	if r.closed {
		return nil, ErrClosed
	}

	stateDict := make(map[string]*tensor.Tensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		t, err := r.ReadTensor(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = t
	}
	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadFrom decodes a complete .bvae stream from in.
// The checksum is always verified.
func ReadFrom(in io.Reader) (map[string]*tensor.Tensor, Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(in, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}

	var r Reader
	headerSize, err := r.parseFixedHeader(fixed)
	if err != nil {
		return nil, Header{}, err
	}

	rest := make([]byte, alignedDataOffset(headerSize)-FixedHeaderSize+r.dataSize)
	if _, err := io.ReadFull(in, rest); err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	var header Header
	if err := json.Unmarshal(rest[:headerSize], &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	if err := ValidateHeader(&header, r.dataSize, ValidationStrict); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	data := rest[alignedDataOffset(headerSize)-FixedHeaderSize:]
	if err := ValidateChecksum(ComputeChecksum(data), r.checksum); err != nil {
		return nil, Header{}, err
	}

	stateDict := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		t, err := decodeTensor(meta, data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, Header{}, err
		}
		stateDict[meta.Name] = t
	}
	return stateDict, header, nil
}
