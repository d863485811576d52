// Package config loads VAE run configuration from YAML files and command
// line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/vae"
)

// Config is the on-disk run configuration: the model settings plus where
// training data comes from.
type Config struct {
	vae.Config `yaml:",inline"`

	// DataDir holds the MNIST IDX files. Empty trains on a constant
	// synthetic batch.
	DataDir    string `yaml:"data_dir"`
	MaxSamples int    `yaml:"max_samples"`
	DataSeed   int64  `yaml:"data_seed"`
}

// Overrides captures CLI supplied values. Zero values leave the loaded
// configuration unchanged.
type Overrides struct {
	Steps          int64
	BatchSize      int
	LatentDim      int
	HiddenDim      int
	LearningRate   float32
	WeightDecay    float32
	Seed           *int64
	Activation     string
	Sharing        string
	Optimizer      string
	CheckpointPath string
	DataDir        string
	LogEvery       int64
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{Config: vae.DefaultConfig()}
}

// Load reads path on top of the defaults, so a file only needs the fields
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the defaults when path
// is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LatentDim > 0 {
		c.LatentDim = o.LatentDim
	}
	if o.HiddenDim > 0 {
		c.HiddenDim = o.HiddenDim
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.WeightDecay > 0 {
		c.WeightDecay = o.WeightDecay
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.Activation != "" {
		act, err := nn.ParseActivation(o.Activation)
		if err != nil {
			return fmt.Errorf("%w: %w", vae.ErrConfiguration, err)
		}
		c.Activation = act
	}
	if o.Sharing != "" {
		sharing, err := nn.ParseSharing(o.Sharing)
		if err != nil {
			return fmt.Errorf("%w: %w", vae.ErrConfiguration, err)
		}
		c.ParameterSharing = sharing
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.CheckpointPath != "" {
		c.CheckpointPath = o.CheckpointPath
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	return nil
}

// Validate verifies the configuration is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", vae.ErrConfiguration)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("%w: max_samples must not be negative, got %d", vae.ErrConfiguration, c.MaxSamples)
	}
	return c.Config.Validate()
}
