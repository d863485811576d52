package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/born-vae/internal/vae"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Write the model weights of a checkpoint without optimizer state",
		Args:  cobra.ExactArgs(1),
		RunE:  exportHandler,
	}
	cmd.Flags().StringP("out", "o", "model.bvae", "Output path")
	cmd.Flags().String("format", vae.FormatBVAE, "Output format (bvae|safetensors)")
	cmd.Flags().Bool("half", false, "Store weights as float16")
	return cmd
}

func exportHandler(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	half, _ := cmd.Flags().GetBool("half")

	if err := vae.Export(args[0], out, vae.ExportOptions{Format: format, Half: half}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], out)
	return nil
}
