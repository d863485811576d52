package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/born-vae/internal/config"
)

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "vae",
		Short:         "Train and sample a variational autoencoder",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newTrainCmd(),
		newSampleCmd(),
		newInspectCmd(),
		newExportCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "born-vae %s\n", version)
		},
	}
}

// logger returns a text logger on the command's error stream.
func logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// addModelFlags registers the flags shared by train and sample.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "YAML configuration file")
	cmd.Flags().String("checkpoint", "", "Checkpoint path")
	cmd.Flags().Int("batch-size", 0, "Batch size")
	cmd.Flags().Int("latent-dim", 0, "Latent dimensionality")
	cmd.Flags().Int("hidden-dim", 0, "Hidden layer width")
	cmd.Flags().String("activation", "", "Hidden activation (tanh|relu)")
	cmd.Flags().String("sharing", "", "Parameter layout (per-slot|shared)")
}

// loadConfig reads --config and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	var o config.Overrides
	o.CheckpointPath, _ = cmd.Flags().GetString("checkpoint")
	o.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	o.LatentDim, _ = cmd.Flags().GetInt("latent-dim")
	o.HiddenDim, _ = cmd.Flags().GetInt("hidden-dim")
	o.Activation, _ = cmd.Flags().GetString("activation")
	o.Sharing, _ = cmd.Flags().GetString("sharing")

	if f := cmd.Flags().Lookup("steps"); f != nil {
		o.Steps, _ = cmd.Flags().GetInt64("steps")
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		seed, _ := cmd.Flags().GetInt64("seed")
		o.Seed = &seed
	}
	if f := cmd.Flags().Lookup("data"); f != nil {
		o.DataDir, _ = cmd.Flags().GetString("data")
	}
	if f := cmd.Flags().Lookup("optimizer"); f != nil {
		o.Optimizer, _ = cmd.Flags().GetString("optimizer")
	}
	if f := cmd.Flags().Lookup("learning-rate"); f != nil {
		o.LearningRate, _ = cmd.Flags().GetFloat32("learning-rate")
	}
	if f := cmd.Flags().Lookup("log-every"); f != nil {
		o.LogEvery, _ = cmd.Flags().GetInt64("log-every")
	}

	if err := cfg.ApplyOverrides(o); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
