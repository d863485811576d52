package vae

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/born-ml/born-vae/internal/autodiff"
	"github.com/born-ml/born-vae/internal/backend/cpu"
	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/optim"
	"github.com/born-ml/born-vae/internal/serialization"
	"github.com/born-ml/born-vae/internal/tensor"
)

// BatchSource supplies training data.
//
// NextBatch returns n input vectors as a [n, input_dim] tensor. Shuffling
// and epoch handling are the source's concern.
type BatchSource interface {
	NextBatch(n int) (*tensor.Tensor, error)
}

// State is the lifecycle state of a Trainer.
type State int

// Trainer states.
//
//	Uninitialized ─┐
//	               ├─> Training ─> Completed | Interrupted | Failed
//	Resumed ───────┘
const (
	StateUninitialized State = iota
	StateResumed
	StateTraining
	StateCompleted
	StateInterrupted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResumed:
		return "resumed"
	case StateTraining:
		return "training"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Trainer owns a model, its optimizer and the step counter, and runs the
// training loop.
//
// A Trainer is not safe for concurrent use, and at most one Trainer may use
// a given checkpoint path at a time.
type Trainer struct {
	cfg       Config
	model     *Model
	backend   *autodiff.AutodiffBackend[*cpu.CPUBackend]
	optimizer optim.Optimizer
	rng       *rand.Rand
	logger    *slog.Logger

	weightsOnly bool

	state    State
	step     int64
	lastLoss float64
	runID    string
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger used for progress and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WeightsOnly makes Restore load the Parameter Set and step counter but not
// the optimizer state, so a checkpoint written by any optimizer can be
// decoded. A weights-only Trainer cannot train or save.
func WeightsOnly() Option {
	return func(t *Trainer) {
		t.weightsOnly = true
	}
}

// errWeightsOnly is returned by the training entry points of a weights-only
// Trainer.
var errWeightsOnly = fmt.Errorf("%w: trainer holds restored weights only and cannot train or save", ErrConfiguration)

// NewTrainer builds a model for cfg.
//
// With resume false the parameters are freshly initialized from cfg.Seed.
// With resume true they are then overwritten from cfg.CheckpointPath,
// together with the optimizer state and the step counter; a checkpoint that
// does not fit cfg fails with ErrCheckpointMismatch.
func NewTrainer(cfg Config, resume bool, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	model, err := NewModel(cfg, rng)
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		cfg:       cfg,
		model:     model,
		backend:   autodiff.New(cpu.New()),
		optimizer: newOptimizer(cfg, model.Parameters()),
		rng:       rng,
		logger:    slog.Default(),
		state:     StateUninitialized,
	}
	for _, opt := range opts {
		opt(t)
	}

	if resume {
		if err := t.Restore(); err != nil {
			return nil, err
		}
		t.setState(StateResumed)
	}
	return t, nil
}

func newOptimizer(cfg Config, params []*nn.Parameter) optim.Optimizer {
	if cfg.optimizerName() == OptimizerSGD {
		return optim.NewSGD(params, optim.SGDConfig{
			LR:       cfg.LearningRate,
			Momentum: cfg.Momentum,
		})
	}
	return optim.NewAdam(params, optim.AdamConfig{
		LR:    cfg.LearningRate,
		Betas: [2]float32{cfg.Beta1, cfg.Beta2},
		Eps:   cfg.Epsilon,
	})
}

// Config returns the trainer's configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Model returns the trained model.
func (t *Trainer) Model() *Model {
	return t.model
}

// Optimizer returns the optimizer updating the model.
func (t *Trainer) Optimizer() optim.Optimizer {
	return t.optimizer
}

// State returns the current lifecycle state.
func (t *Trainer) State() State {
	return t.state
}

// CurrentStep returns the number of completed optimizer updates.
func (t *Trainer) CurrentStep() int64 {
	return t.step
}

// LastLoss returns the loss of the most recent step.
func (t *Trainer) LastLoss() float64 {
	return t.lastLoss
}

// RunID returns the identifier of the training run, empty until the first
// save or restore.
func (t *Trainer) RunID() string {
	return t.runID
}

func (t *Trainer) setState(s State) {
	if t.state == s {
		return
	}
	t.logger.Debug("trainer state", "from", t.state, "to", s)
	t.state = s
}

// Noise draws a standard-normal noise vector of length LatentDim from the
// trainer's generator.
func (t *Trainer) Noise() *tensor.Tensor {
	return tensor.Randn(tensor.Shape{t.cfg.LatentDim}, 1, t.rng)
}

// Step runs one optimizer update on batch x ([batch, input]) with noise
// eps ([latent]) and returns the loss evaluated before the update.
//
// A non-finite loss or gradient returns ErrNumericInstability and leaves
// the parameters, optimizer state and step counter unchanged.
func (t *Trainer) Step(x, eps *tensor.Tensor) (float32, error) {
	if t.weightsOnly {
		return 0, errWeightsOnly
	}
	if t.state != StateTraining {
		t.setState(StateTraining)
	}

	tape := t.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	out, err := t.model.Forward(t.backend, x, eps)
	if err != nil {
		t.setState(StateFailed)
		return 0, fmt.Errorf("step %d: %w", t.step, err)
	}

	loss := out.Loss.Total
	if !loss.IsFinite() {
		t.setState(StateFailed)
		return 0, fmt.Errorf("%w: loss is %v at step %d", ErrNumericInstability, loss.Item(), t.step)
	}

	grads := autodiff.Backward(loss, t.backend)
	for _, p := range t.model.Parameters() {
		if g := grads[p.Tensor()]; g != nil && !g.IsFinite() {
			t.setState(StateFailed)
			return 0, fmt.Errorf("%w: gradient of %s is not finite at step %d", ErrNumericInstability, p.Name(), t.step)
		}
	}

	t.optimizer.Step(grads)
	t.step++
	t.lastLoss = float64(loss.Item())
	return loss.Item(), nil
}

// Fit trains until the step counter reaches cfg.Steps or ctx is done.
//
// Cancellation is observed between steps. Whatever the outcome, the
// checkpoint is written before Fit returns; a save failure is joined to
// the training error. A cancelled run returns an error wrapping
// ErrInterrupted.
func (t *Trainer) Fit(ctx context.Context, source BatchSource) (err error) {
	if t.weightsOnly {
		return errWeightsOnly
	}
	t.setState(StateTraining)
	defer func() {
		if saveErr := t.Save(); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
	}()

	t.logger.Info("training started",
		"step", t.step, "steps", t.cfg.Steps, "batch_size", t.cfg.BatchSize,
		"optimizer", t.optimizer.Name(), "sharing", t.cfg.ParameterSharing)

	start := time.Now()
	for t.step < t.cfg.Steps {
		select {
		case <-ctx.Done():
			t.setState(StateInterrupted)
			t.logger.Info("ending training", "step", t.step)
			return fmt.Errorf("%w at step %d: %w", ErrInterrupted, t.step, context.Cause(ctx))
		default:
		}

		step := t.step
		x, err := source.NextBatch(t.cfg.BatchSize)
		if err != nil {
			t.setState(StateFailed)
			return fmt.Errorf("step %d: next batch: %w", step, err)
		}

		loss, err := t.Step(x, t.Noise())
		if err != nil {
			return err
		}

		if t.cfg.LogEvery > 0 && step%t.cfg.LogEvery == 0 {
			t.logger.Info("training progress",
				"step", step, "loss", loss, "elapsed", time.Since(start).Round(time.Millisecond))
			start = time.Now()
		}
	}

	t.setState(StateCompleted)
	t.logger.Info("finished training", "step", t.step)
	return nil
}

// Save writes parameters, optimizer state and the step counter to
// cfg.CheckpointPath, replacing any previous checkpoint.
func (t *Trainer) Save() error {
	if t.weightsOnly {
		return errWeightsOnly
	}
	ckpt := &nn.Checkpoint{
		Params:    t.model.Parameters(),
		Optimizer: t.optimizer,
		Step:      t.step,
		Loss:      t.lastLoss,
		RunID:     t.runID,
		Metadata:  t.cfg.Metadata(),
	}
	if err := ckpt.Save(t.cfg.CheckpointPath, serialization.WriteOptions{}); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", t.cfg.CheckpointPath, err)
	}
	t.runID = ckpt.RunID

	t.logger.Info("checkpoint saved", "path", t.cfg.CheckpointPath, "step", t.step, "run_id", t.runID)
	return nil
}

// Restore overwrites parameters, optimizer state and the step counter from
// cfg.CheckpointPath. With WeightsOnly the optimizer state is left alone.
//
// The optimizer type and all shapes are checked before anything is copied:
// on ErrCheckpointMismatch the parameters and optimizer are unchanged.
func (t *Trainer) Restore() error {
	var optimizer nn.OptimizerState
	if !t.weightsOnly {
		optimizer = t.optimizer
	}
	ckpt, err := nn.LoadCheckpoint(t.cfg.CheckpointPath, t.model.Parameters(), optimizer)
	if err != nil {
		return fmt.Errorf("restore checkpoint %s: %w", t.cfg.CheckpointPath, checkpointError(err))
	}

	t.step = ckpt.Step
	t.lastLoss = ckpt.Loss
	t.runID = ckpt.RunID

	t.logger.Info("checkpoint restored", "path", t.cfg.CheckpointPath, "step", t.step, "run_id", t.runID)
	return nil
}
