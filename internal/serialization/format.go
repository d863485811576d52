package serialization

import (
	"fmt"
	"time"
)

// Format constants.
const (
	MagicBytes      = "BVAE"
	FormatVersion   = 1
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat16 = "float16"
)

// Flags for the .bvae format.
const (
	FlagHasOptimizer  uint32 = 1 << 0 // bit 0: optimizer state included
	FlagHasMetadata   uint32 = 1 << 1 // bit 1: custom metadata included
	FlagHalfPrecision uint32 = 1 << 2 // bit 2: tensor payloads stored as float16
)

// Header represents the JSON header in a .bvae file.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the format
	Producer       string            `json:"producer"`             // Program and version that wrote the file
	ModelType      string            `json:"model_type"`           // Type of model (e.g., "VAE")
	RunID          string            `json:"run_id,omitempty"`     // Identifies the training run across resumes
	CreatedAt      time.Time         `json:"created_at"`           // When the file was written
	Tensors        []TensorMeta      `json:"tensors"`              // Tensor metadata
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	Step            int64          `json:"step"`             // Next step to run when resuming
	Loss            float64        `json:"loss"`             // Last reported loss
	OptimizerType   string         `json:"optimizer_type"`   // Optimizer type ("Adam")
	OptimizerConfig map[string]any `json:"optimizer_config"` // Optimizer hyperparameters
	TrainingMeta    map[string]any `json:"training_meta"`    // Additional training metadata
}

// TensorMeta describes a tensor in the .bvae file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "encoder.w1")
	DType  string `json:"dtype"`  // "float32" or "float16"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeSize returns the per-element byte size of a stored dtype.
func dtypeSize(dtype string) (int, error) {
	switch dtype {
	case DTypeFloat32:
		return 4, nil
	case DTypeFloat16:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, dtype)
	}
}

// alignedDataOffset returns where the data section starts for a JSON header
// of the given size.
func alignedDataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
