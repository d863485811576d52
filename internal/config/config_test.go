package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/vae"
)

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vae.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
batch_size: 32
latent_dim: 4
activation: relu
parameter_sharing: shared
data_dir: /data/mnist
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 4, cfg.LatentDim)
	assert.Equal(t, nn.ReLU, cfg.Activation)
	assert.Equal(t, nn.Shared, cfg.ParameterSharing)
	assert.Equal(t, "/data/mnist", cfg.DataDir)

	// Untouched fields keep the reference values.
	assert.Equal(t, 784, cfg.InputDim)
	assert.Equal(t, 500, cfg.HiddenDim)
	assert.Equal(t, float32(0.001), cfg.LearningRate)
	assert.Equal(t, "model.ckpt", cfg.CheckpointPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("activation: sigmoid\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.HiddenDim = 64
	cfg.Activation = nn.ReLU
	cfg.MaxSamples = 1000

	path := filepath.Join(t.TempDir(), "nested", "vae.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, vae.DefaultConfig(), cfg.Config)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	seed := int64(0)
	cfg.Seed = 9

	require.NoError(t, cfg.ApplyOverrides(Overrides{
		Steps:      10,
		BatchSize:  8,
		Seed:       &seed,
		Activation: "relu",
		Sharing:    "shared",
		Optimizer:  "sgd",
	}))
	assert.Equal(t, int64(10), cfg.Steps)
	assert.Equal(t, 8, cfg.BatchSize)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, nn.ReLU, cfg.Activation)
	assert.Equal(t, nn.Shared, cfg.ParameterSharing)
	assert.Equal(t, "sgd", cfg.Optimizer)
	assert.Equal(t, 784, cfg.InputDim)

	err := cfg.ApplyOverrides(Overrides{Activation: "gelu"})
	assert.ErrorIs(t, err, vae.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxSamples = -1
	assert.ErrorIs(t, cfg.Validate(), vae.ErrConfiguration)

	cfg = Default()
	cfg.BatchSize = 0
	assert.ErrorIs(t, cfg.Validate(), vae.ErrConfiguration)

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), vae.ErrConfiguration)
}
