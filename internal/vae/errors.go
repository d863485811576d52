package vae

import (
	"errors"
	"fmt"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
)

var (
	// ErrConfiguration reports an unusable combination of dimensions or
	// settings, including a non-square input for mosaics and a grid count
	// mismatch.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrCheckpointMismatch reports a checkpoint whose contents disagree with
	// the live configuration.
	ErrCheckpointMismatch = errors.New("checkpoint does not match configuration")

	// ErrNumericInstability reports a non-finite loss or gradient. The
	// optimizer update for that step is not applied.
	ErrNumericInstability = errors.New("numeric instability")

	// ErrInterrupted is returned by Fit when its context was cancelled. The
	// checkpoint has been written by the time it is returned.
	ErrInterrupted = errors.New("training interrupted")

	// ErrInvalidBatch reports a data source batch of the wrong shape.
	ErrInvalidBatch = errors.New("invalid batch")
)

// ShapeMismatchError reports a checkpoint tensor whose shape differs from
// the one the configuration implies.
type ShapeMismatchError struct {
	Tensor string
	Want   tensor.Shape
	Got    tensor.Shape
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%v: tensor %q has shape %v, configuration requires %v",
		ErrCheckpointMismatch, e.Tensor, e.Got, e.Want)
}

// Unwrap returns ErrCheckpointMismatch.
func (e *ShapeMismatchError) Unwrap() error {
	return ErrCheckpointMismatch
}

// checkpointError maps restore failures onto the package taxonomy.
// I/O and format errors pass through unchanged.
func checkpointError(err error) error {
	var shapeErr *nn.ShapeError
	switch {
	case errors.As(err, &shapeErr):
		return &ShapeMismatchError{Tensor: shapeErr.Name, Want: shapeErr.Want, Got: shapeErr.Got}
	case errors.Is(err, nn.ErrMissingTensor),
		errors.Is(err, nn.ErrUnexpectedTensor),
		errors.Is(err, nn.ErrOptimizerMismatch):
		return fmt.Errorf("%w: %w", ErrCheckpointMismatch, err)
	default:
		return err
	}
}
