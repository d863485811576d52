package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/born-vae/internal/render"
	"github.com/born-ml/born-vae/internal/vae"
)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Decode a latent grid from a checkpoint into a PNG mosaic",
		Args:  cobra.NoArgs,
		RunE:  sampleHandler,
	}
	addModelFlags(cmd)
	cmd.Flags().Int("grid", vae.DefaultGridWidth, "Grid width (points per latent axis)")
	cmd.Flags().StringP("out", "o", "mosaic.png", "Output PNG path")
	cmd.Flags().Int("scale", 2, "Pixel magnification")
	cmd.Flags().Bool("raw", false, "Map [0,1] directly instead of stretching to the image range")
	return cmd
}

func sampleHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	grid, _ := cmd.Flags().GetInt("grid")
	out, _ := cmd.Flags().GetString("out")
	scale, _ := cmd.Flags().GetInt("scale")
	raw, _ := cmd.Flags().GetBool("raw")

	trainer, err := vae.NewTrainer(cfg.Config, true, vae.WeightsOnly(), vae.WithLogger(logger(cmd)))
	if err != nil {
		return err
	}

	mosaic, err := trainer.Mosaic(grid)
	if err != nil {
		return err
	}
	if err := render.WritePNG(out, mosaic, render.Options{Scale: scale, Normalize: !raw}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d mosaic from step %d to %s\n",
		mosaic.Shape()[1], mosaic.Shape()[0], trainer.CurrentStep(), out)
	return nil
}
