package nn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/born-vae/internal/serialization"
	"github.com/born-ml/born-vae/internal/tensor"
)

const optimizerPrefix = "optimizer."

// Producer is stamped into every file header.
const Producer = "born-vae/0.1.0"

// ErrOptimizerMismatch is returned when a checkpoint was written by a
// different optimizer than the one restoring it.
var ErrOptimizerMismatch = errors.New("checkpoint optimizer mismatch")

// ErrNotCheckpoint is returned when a file holds weights but no training state.
var ErrNotCheckpoint = errors.New("file is not a checkpoint")

// OptimizerState represents an optimizer that can save/load its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	// StateDict returns the optimizer state for serialization.
	StateDict() map[string]*tensor.Tensor

	// CheckStateDict reports whether stateDict fits the optimizer without
	// modifying it.
	CheckStateDict(stateDict map[string]*tensor.Tensor) error

	// LoadStateDict loads optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.Tensor) error

	// Name identifies the optimizer type ("Adam", "SGD").
	Name() string

	// Hyperparameters returns the optimizer configuration.
	Hyperparameters() map[string]any
}

// Checkpoint represents a complete training state snapshot.
//
// A checkpoint includes:
//   - Model parameters (weights and biases)
//   - Optimizer state (Adam moments and timestep)
//   - Training metadata (step, loss, run id)
//   - Custom metadata describing the configuration
//
// Example:
//
//	ckpt := &nn.Checkpoint{
//	    Params:    model.Parameters(),
//	    Optimizer: optimizer,
//	    Step:      5000,
//	    Loss:      112.4,
//	}
//	err := ckpt.Save("model.ckpt", serialization.WriteOptions{})
type Checkpoint struct {
	Params    []*Parameter      // The model parameters
	Optimizer OptimizerState    // Optional optimizer with its state
	Step      int64             // Number of completed optimizer updates
	Loss      float64           // Last reported loss
	RunID     string            // Training run identifier; generated on first save
	Metadata  map[string]string // Configuration echo
	CreatedAt time.Time         // When the checkpoint was written
}

// Save writes the checkpoint to path, replacing any existing file.
//
// The file is written to a temporary name and renamed into place, so an
// existing checkpoint is only replaced by a complete one.
func (c *Checkpoint) Save(path string, opts serialization.WriteOptions) (err error) {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	combined := StateDict(c.Params)
	meta := &serialization.CheckpointMeta{
		Step: c.Step,
		Loss: c.Loss,
	}
	if c.Optimizer != nil {
		for name, t := range c.Optimizer.StateDict() {
			combined[optimizerPrefix+name] = t
		}
		meta.OptimizerType = c.Optimizer.Name()
		meta.OptimizerConfig = c.Optimizer.Hyperparameters()
	}

	header := serialization.Header{
		Producer:       Producer,
		ModelType:      "VAE",
		RunID:          c.RunID,
		CreatedAt:      c.CreatedAt,
		Metadata:       c.Metadata,
		CheckpointMeta: meta,
	}

	writer, err := serialization.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	if err := writer.WriteStateDict(combined, header, opts); err != nil {
		_ = writer.Abort()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return writer.Close()
}

// LoadCheckpoint restores params (and optimizer state, when optimizer is
// non-nil) from the checkpoint at path.
//
// params and optimizer must be pre-constructed with the same shapes as when
// the checkpoint was saved. The optimizer type and every model and optimizer
// tensor are checked before anything is copied: a *ShapeError,
// ErrOptimizerMismatch or missing tensor leaves params and optimizer
// untouched.
//
// A nil optimizer restores the weights only, whatever optimizer wrote the
// checkpoint.
func LoadCheckpoint(path string, params []*Parameter, optimizer OptimizerState) (*Checkpoint, error) {
	reader, err := serialization.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	header := reader.Header()
	if header.CheckpointMeta == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotCheckpoint)
	}

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, fmt.Errorf("failed to read state dict: %w", err)
	}

	modelState, optimizerState := SplitStateDict(stateDict)
	restoreOptimizer := optimizer != nil && len(optimizerState) > 0

	if restoreOptimizer {
		if saved := header.CheckpointMeta.OptimizerType; saved != optimizer.Name() {
			return nil, fmt.Errorf("%w: saved %q, restoring %q", ErrOptimizerMismatch, saved, optimizer.Name())
		}
	}
	if err := CheckStateDict(params, modelState); err != nil {
		return nil, err
	}
	if restoreOptimizer {
		if err := optimizer.CheckStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("failed to load optimizer state: %w", err)
		}
	}

	if err := LoadStateDict(params, modelState); err != nil {
		return nil, err
	}
	if restoreOptimizer {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("failed to load optimizer state: %w", err)
		}
	}

	return &Checkpoint{
		Params:    params,
		Optimizer: optimizer,
		Step:      header.CheckpointMeta.Step,
		Loss:      header.CheckpointMeta.Loss,
		RunID:     header.RunID,
		Metadata:  header.Metadata,
		CreatedAt: header.CreatedAt,
	}, nil
}

// SplitStateDict separates model tensors from "optimizer."-prefixed ones,
// stripping the prefix from the latter.
func SplitStateDict(stateDict map[string]*tensor.Tensor) (model, optimizer map[string]*tensor.Tensor) {
	model = make(map[string]*tensor.Tensor)
	optimizer = make(map[string]*tensor.Tensor)
	for name, t := range stateDict {
		if rest, ok := strings.CutPrefix(name, optimizerPrefix); ok {
			optimizer[rest] = t
		} else {
			model[name] = t
		}
	}
	return model, optimizer
}
