// Package vae implements a variational autoencoder over flattened images.
//
// The package provides:
//   - Config: the immutable training configuration
//   - Encoder, Decoder: the two-layer inference and generative networks
//   - Reparameterize: the differentiable latent sampler
//   - Loss: the negative ELBO with optional weight decay
//   - Trainer: the training loop with checkpoint-based resume
//   - SampleGrid, Assemble: latent-grid visualization
//
// Every tensor flowing through the model is a column batch of shape
// [batch, features, 1]. In the default per-slot layout each batch position
// owns its own copy of every weight, so batches always have exactly
// Config.BatchSize rows.
package vae

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/born-vae/internal/nn"
)

// Optimizer names accepted by Config.Optimizer.
const (
	OptimizerAdam = "adam"
	OptimizerSGD  = "sgd"
)

// Config holds every setting of a VAE training or sampling session.
//
// A Config is a value: the Trainer copies it at construction and never
// mutates it.
type Config struct {
	BatchSize      int           `yaml:"batch_size"`
	InputDim       int           `yaml:"input_dim"`
	LatentDim      int           `yaml:"latent_dim"`
	HiddenDim      int           `yaml:"hidden_dim"`
	LearningRate   float32       `yaml:"learning_rate"`
	InitStd        float64       `yaml:"init_std"`
	WeightDecay    float32       `yaml:"weight_decay"`
	Steps          int64         `yaml:"steps"`
	Seed           int64         `yaml:"seed"`
	Activation     nn.Activation `yaml:"activation"`
	CheckpointPath string        `yaml:"checkpoint_path"`

	// ParameterSharing selects per-slot ([batch, out, in]) or shared
	// ([1, out, in]) dense weights.
	ParameterSharing nn.Sharing `yaml:"parameter_sharing"`

	// LogEvery is the progress reporting cadence in steps; 0 disables it.
	LogEvery int64 `yaml:"log_every"`

	Optimizer string  `yaml:"optimizer"`
	Momentum  float32 `yaml:"momentum"` // SGD only
	Beta1     float32 `yaml:"beta1"`    // Adam only
	Beta2     float32 `yaml:"beta2"`    // Adam only
	Epsilon   float32 `yaml:"epsilon"`  // Adam only
}

// DefaultConfig returns the reference MNIST configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:        100,
		InputDim:         784,
		LatentDim:        2,
		HiddenDim:        500,
		LearningRate:     0.001,
		InitStd:          0.1,
		WeightDecay:      0,
		Steps:            1_000_000,
		Seed:             0,
		Activation:       nn.Tanh,
		CheckpointPath:   "model.ckpt",
		ParameterSharing: nn.PerSlot,
		LogEvery:         100,
		Optimizer:        OptimizerAdam,
		Beta1:            0.9,
		Beta2:            0.999,
		Epsilon:          1e-8,
	}
}

// Validate checks the configuration for unusable values.
// All errors wrap ErrConfiguration.
func (c Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return configErrorf("batch size must be positive, got %d", c.BatchSize)
	case c.InputDim <= 0:
		return configErrorf("input dim must be positive, got %d", c.InputDim)
	case c.LatentDim <= 0:
		return configErrorf("latent dim must be positive, got %d", c.LatentDim)
	case c.HiddenDim <= 0:
		return configErrorf("hidden dim must be positive, got %d", c.HiddenDim)
	case !(c.LearningRate > 0):
		return configErrorf("learning rate must be positive, got %v", c.LearningRate)
	case !(c.InitStd > 0):
		return configErrorf("init std must be positive, got %v", c.InitStd)
	case !(c.WeightDecay >= 0):
		return configErrorf("weight decay must not be negative, got %v", c.WeightDecay)
	case c.Steps < 0:
		return configErrorf("steps must not be negative, got %d", c.Steps)
	case c.LogEvery < 0:
		return configErrorf("log cadence must not be negative, got %d", c.LogEvery)
	case c.CheckpointPath == "":
		return configErrorf("checkpoint path is empty")
	}

	if c.Activation != nn.Tanh && c.Activation != nn.ReLU {
		return configErrorf("unknown activation %v", c.Activation)
	}
	if c.ParameterSharing != nn.PerSlot && c.ParameterSharing != nn.Shared {
		return configErrorf("unknown parameter sharing %v", c.ParameterSharing)
	}

	switch c.optimizerName() {
	case OptimizerAdam:
		if c.Beta1 <= 0 || c.Beta1 >= 1 || c.Beta2 <= 0 || c.Beta2 >= 1 {
			return configErrorf("adam betas must be in (0, 1), got %v, %v", c.Beta1, c.Beta2)
		}
		if c.Epsilon <= 0 {
			return configErrorf("adam epsilon must be positive, got %v", c.Epsilon)
		}
	case OptimizerSGD:
		if c.Momentum < 0 || c.Momentum >= 1 {
			return configErrorf("sgd momentum must be in [0, 1), got %v", c.Momentum)
		}
	default:
		return configErrorf("unknown optimizer %q (want %s or %s)", c.Optimizer, OptimizerAdam, OptimizerSGD)
	}
	return nil
}

func (c Config) optimizerName() string {
	name := strings.ToLower(strings.TrimSpace(c.Optimizer))
	if name == "" {
		return OptimizerAdam
	}
	return name
}

// Metadata returns the configuration as string pairs for checkpoint headers.
func (c Config) Metadata() map[string]string {
	return map[string]string{
		"batch_size":        strconv.Itoa(c.BatchSize),
		"input_dim":         strconv.Itoa(c.InputDim),
		"latent_dim":        strconv.Itoa(c.LatentDim),
		"hidden_dim":        strconv.Itoa(c.HiddenDim),
		"learning_rate":     strconv.FormatFloat(float64(c.LearningRate), 'g', -1, 32),
		"init_std":          strconv.FormatFloat(c.InitStd, 'g', -1, 64),
		"weight_decay":      strconv.FormatFloat(float64(c.WeightDecay), 'g', -1, 32),
		"seed":              strconv.FormatInt(c.Seed, 10),
		"activation":        c.Activation.String(),
		"parameter_sharing": c.ParameterSharing.String(),
		"optimizer":         c.optimizerName(),
	}
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
