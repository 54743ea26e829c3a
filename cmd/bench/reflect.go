package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/app"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/reflective"
	"github.com/mberliner/reflexio/internal/bench/report"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

type reflectOptions struct {
	Candidate string
	Split     string
	Out       string
}

func reflectCmd(cfg *cliConfig) *cobra.Command {
	opts := reflectOptions{}

	cmd := &cobra.Command{
		Use:   "reflect",
		Short: "Print the reflective dataset for a candidate",
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
			return runReflect(cmd.Context(), h.Adapter, h.Task, ds.Split(split), cand, opts.Out, cfg.Format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Candidate, "candidate", "c", "", "candidate file (.txt system prompt or .json components)")
	cmd.Flags().StringVar(&opts.Split, "split", string(dataset.Train), "dataset split to reflect on")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "also write the dataset to this YAML file")
	_ = cmd.MarkFlagRequired("candidate")

	return cmd
}

func runReflect(ctx context.Context, a adapter.Adapter, task *spec.TaskSpec, batch []dataset.Example, cand adapter.Candidate, out, format string, w io.Writer) error {
	res, err := a.Evaluate(ctx, batch, cand, false)
	if err != nil {
		return err
	}
	data, err := a.MakeReflectiveDataset(batch, res)
	if err != nil {
		return err
	}

	if out != "" {
		f := &reflective.File{Task: task.Name, Candidate: cand.SystemPrompt(), Data: data}
		if err := reflective.WriteFile(f, out); err != nil {
			return err
		}
	}

	if format == formatJSON {
		return writeJSON(w, data)
	}
	report.WriteReflectiveTable(data, w)
	return nil
}
