package vae_test

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-vae/internal/serialization"
	"github.com/born-ml/born-vae/internal/vae"
)

func TestExport_WeightsOnly(t *testing.T) {
	cfg := smallConfig(t)
	tr := newTrainer(t, cfg, false)
	require.NoError(t, tr.Save())

	dst := filepath.Join(t.TempDir(), "weights.bvae")
	require.NoError(t, vae.Export(cfg.CheckpointPath, dst, vae.ExportOptions{Half: true}))

	reader, err := serialization.Open(dst)
	require.NoError(t, err)
	defer reader.Close()

	header := reader.Header()
	assert.Nil(t, header.CheckpointMeta)
	assert.Equal(t, tr.RunID(), header.RunID)
	assert.Equal(t, "3", header.Metadata["hidden_dim"])
	assert.NotZero(t, reader.Flags()&serialization.FlagHalfPrecision)

	names := reader.TensorNames()
	assert.Len(t, names, len(tr.Model().Parameters()))

	for _, p := range tr.Model().Parameters() {
		got, err := reader.ReadTensor(p.Name())
		require.NoError(t, err)
		if diff := cmp.Diff(p.Tensor().Data(), got.Data(), cmpopts.EquateApprox(0, 1e-3)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", p.Name(), diff)
		}
	}
}

func TestExport_SafeTensors(t *testing.T) {
	cfg := smallConfig(t)
	tr := newTrainer(t, cfg, false)
	require.NoError(t, tr.Save())

	dst := filepath.Join(t.TempDir(), "weights.safetensors")
	require.NoError(t, vae.Export(cfg.CheckpointPath, dst, vae.ExportOptions{Format: vae.FormatSafeTensors}))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	n := binary.LittleEndian.Uint64(raw[:8])

	var header map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw[8:8+n], &header))
	assert.Contains(t, header, "decoder.out.w")
	assert.Contains(t, header, "__metadata__")
	assert.NotContains(t, header, "optimizer.t")
	// Ten weights plus metadata.
	assert.Len(t, header, 11)
}

func TestExport_UnknownFormat(t *testing.T) {
	cfg := smallConfig(t)
	require.NoError(t, newTrainer(t, cfg, false).Save())

	err := vae.Export(cfg.CheckpointPath, filepath.Join(t.TempDir(), "x"), vae.ExportOptions{Format: "onnx"})
	assert.ErrorIs(t, err, vae.ErrConfiguration)
}
