package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/app"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/report"
	"github.com/mberliner/reflexio/internal/bench/runner"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

type evaluateOptions struct {
	Candidate string
	Split     string
	Traces    bool
}

func evaluateCmd(cfg *cliConfig) *cobra.Command {
	opts := evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score one candidate on a dataset split",
		RunE: func(cmd *cobra.Command, args []string) error {
			split, err := parseSplit(opts.Split)
			if err != nil {
				return err
			}
			cand, err := app.LoadCandidate(opts.Candidate)
			if err != nil {
				return err
			}

			h, closeFn, err := loadHarness(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ds, err := h.LoadDataset(cfg.DatasetPath)
			if err != nil {
				return err
			}
			return runEvaluate(cmd.Context(), h.Adapter, h.Task, ds, split, cand, opts.Traces, cfg.Format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Candidate, "candidate", "c", "", "candidate file (.txt system prompt or .json components)")
	cmd.Flags().StringVar(&opts.Split, "split", string(dataset.Val), "dataset split to evaluate")
	cmd.Flags().BoolVar(&opts.Traces, "traces", false, "capture prompts and raw responses")
	_ = cmd.MarkFlagRequired("candidate")

	return cmd
}

func runEvaluate(ctx context.Context, a adapter.Adapter, task *spec.TaskSpec, ds *dataset.Dataset, split dataset.Split, cand adapter.Candidate, traces bool, format string, w io.Writer) error {
	rcfg := runner.DefaultConfig(task.Name)
	rcfg.PerfectThreshold = task.Scoring.Perfect()
	rcfg.CaptureTraces = traces

	sr, err := runner.New(a, rcfg).EvaluateSplit(ctx, ds, split, "candidate", cand)
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeJSON(w, sr)
	}
	report.WriteEvaluationTable(sr, w)
	return nil
}
