package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mediapass/config"
	"mediapass/ffmpeg"
	"mediapass/internal/logging"
	"mediapass/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand(os.Stdout, os.Stderr)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var flags *config.Flags

	cmd := &cobra.Command{
		Use:   "mediapass [config-file] <input>...",
		Short: "Convert media files with ffmpeg",
		Long: `mediapass converts each input file or directory with ffmpeg, one file
at a time. Video, audio and filter settings come from built-in defaults,
config files (YAML or TOML) and flags, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, flags, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	flags = config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, args []string, flags *config.Flags, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(args, flags)
	if err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrConfig, err)
	}

	logger := logrus.New()
	if err := logging.Setup(logger, stderr, cfg.LogLevel, cfg.Verbose); err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrConfig, err)
	}

	if flags.DryRun {
		cfg.PrintConfig(stdout)
		return nil
	}
	if flags.SaveConfig != "" {
		if err := config.SaveConfigFile(cfg, flags.SaveConfig); err != nil {
			return err
		}
		logger.WithField("path", flags.SaveConfig).Info("Configuration saved")
		return nil
	}

	if err := cfg.CheckResources(); err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrMissingResource, err)
	}

	policy, err := ffmpeg.PolicyFromConfig(cfg.Process)
	if err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrConfig, err)
	}
	logger.WithField("policy", policy.String()).Debug("Process policy")

	executor := ffmpeg.New(cfg.Simulate, stdout, policy, logger)
	runner := pipeline.NewRunner(cfg, executor, logger, stdout)
	_, err = runner.Run(ctx, cfg.Inputs)
	return err
}
