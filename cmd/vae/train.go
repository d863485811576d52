package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/born-ml/born-vae/internal/config"
	"github.com/born-ml/born-vae/internal/dataset"
	"github.com/born-ml/born-vae/internal/vae"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model, checkpointing on exit",
		Long: `Train the model on MNIST (--data) or on a constant synthetic batch.

The checkpoint is written when training completes and when it is
interrupted with Ctrl-C; --resume continues from it.`,
		Args: cobra.NoArgs,
		RunE: trainHandler,
	}
	addModelFlags(cmd)
	cmd.Flags().Bool("resume", false, "Resume from the checkpoint")
	cmd.Flags().Int64("steps", 0, "Total number of training steps")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().String("data", "", "Directory with MNIST IDX files")
	cmd.Flags().String("optimizer", "", "Optimizer (adam|sgd)")
	cmd.Flags().Float32("learning-rate", 0, "Learning rate")
	cmd.Flags().Int64("log-every", 0, "Progress reporting cadence in steps")
	return cmd
}

func trainHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	resume, _ := cmd.Flags().GetBool("resume")
	log := logger(cmd)

	source, err := batchSource(cfg)
	if err != nil {
		return err
	}

	trainer, err := vae.NewTrainer(cfg.Config, resume, vae.WithLogger(log))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = trainer.Fit(ctx, source)
	if errors.Is(err, vae.ErrInterrupted) {
		log.Info("training interrupted; checkpoint written", "path", cfg.CheckpointPath, "step", trainer.CurrentStep())
		return nil
	}
	return err
}

// batchSource returns the MNIST training split when a data directory is
// configured, otherwise a constant mid-gray batch.
func batchSource(cfg *config.Config) (vae.BatchSource, error) {
	if cfg.DataDir == "" {
		return dataset.Constant{Value: 0.5, Dim: cfg.InputDim}, nil
	}

	mnist, err := dataset.LoadMNIST(cfg.DataDir, true, cfg.MaxSamples)
	if err != nil {
		return nil, err
	}
	if mnist.Dim != cfg.InputDim {
		return nil, fmt.Errorf("%w: dataset images have %d pixels, input_dim is %d", vae.ErrConfiguration, mnist.Dim, cfg.InputDim)
	}
	return dataset.FromMNIST(mnist, cfg.DataSeed)
}
