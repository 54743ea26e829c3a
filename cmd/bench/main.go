package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/app"
	"github.com/mberliner/reflexio/pkg/config/env"
	"github.com/mberliner/reflexio/pkg/logging"
)

// annotationNoSpec marks subcommands that run without a task descriptor.
const annotationNoSpec = "no-spec"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &cliConfig{}

	rootCmd := &cobra.Command{
		Use:   "bench",
		Short: "Evaluate prompt candidates against a task descriptor",
		Long: `bench runs the evaluation harness outside an optimizer.

  evaluate  score one candidate on a dataset split
  reflect   print the reflective dataset an optimizer would receive
  compare   baseline vs optimized, with run artifacts and a metrics record
  audit     export judge verdicts for review, report agreement
  schema    print the task descriptor JSON Schema`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.EnvPath != "" {
				_ = os.Setenv("ENV_PATH", cfg.EnvPath)
			}
			if err := env.LoadDotEnv(env.AppEnv(), ".env"); err != nil {
				slog.Debug("Continuing without .env", "error", err)
			}
			if err := logging.Setup(os.Stderr); err != nil {
				return err
			}
			return cfg.validate(cmd.Annotations[annotationNoSpec] == "")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfg.SpecPath, "spec", "s", "", "path to the task descriptor YAML")
	rootCmd.PersistentFlags().StringVarP(&cfg.DatasetPath, "dataset", "d", "", "dataset CSV (defaults to the descriptor's dataset)")
	rootCmd.PersistentFlags().StringVar(&cfg.Format, "format", formatText, "output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&cfg.EnvPath, "env", "", ".env file to load (overrides ENV_PATH)")

	rootCmd.AddCommand(
		evaluateCmd(cfg),
		reflectCmd(cfg),
		compareCmd(cfg),
		auditCmd(cfg),
		schemaCmd(),
	)
	return rootCmd
}

// loadHarness builds the harness every subcommand runs against.
func loadHarness(ctx context.Context, cfg *cliConfig) (*app.Harness, func(), error) {
	h, err := app.Load(ctx, cfg.SpecPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load harness: %w", err)
	}
	return h, h.Close, nil
}
