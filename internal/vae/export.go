package vae

import (
	"fmt"
	"strings"
	"time"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/serialization"
)

// Export formats.
const (
	FormatBVAE        = "bvae"
	FormatSafeTensors = "safetensors"
)

// ExportOptions controls Export.
type ExportOptions struct {
	Format string // FormatBVAE (default) or FormatSafeTensors
	Half   bool   // store float16 payloads
}

// Export writes the model weights of the checkpoint at src to dst,
// dropping optimizer state and the step counter.
func Export(src, dst string, opts ExportOptions) error {
	reader, err := serialization.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	weights, _ := nn.SplitStateDict(stateDict)
	source := reader.Header()

	writeOpts := serialization.WriteOptions{Half: opts.Half}
	switch strings.ToLower(opts.Format) {
	case "", FormatBVAE:
		header := serialization.Header{
			Producer:  nn.Producer,
			ModelType: source.ModelType,
			RunID:     source.RunID,
			CreatedAt: time.Now().UTC(),
			Metadata:  source.Metadata,
		}
		writer, err := serialization.Create(dst)
		if err != nil {
			return err
		}
		if err := writer.WriteStateDict(weights, header, writeOpts); err != nil {
			_ = writer.Abort()
			return fmt.Errorf("write %s: %w", dst, err)
		}
		return writer.Close()

	case FormatSafeTensors:
		metadata := make(map[string]string, len(source.Metadata)+1)
		for k, v := range source.Metadata {
			metadata[k] = v
		}
		metadata["run_id"] = source.RunID
		return serialization.WriteSafeTensors(dst, weights, metadata, writeOpts)

	default:
		return fmt.Errorf("%w: unknown export format %q (want %s or %s)", ErrConfiguration, opts.Format, FormatBVAE, FormatSafeTensors)
	}
}
