package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/app"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/report"
	"github.com/mberliner/reflexio/internal/bench/runner"
	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/internal/storage/factory"
)

const masterCSVName = "metrics.csv"

type compareOptions struct {
	Baseline           string
	Optimized          string
	ResultsDir         string
	CSVPath            string
	Budget             int
	PositiveReflection string
	Notes              string
	NoSinks            bool
}

func compareCmd(cfg *cliConfig) *cobra.Command {
	opts := compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a baseline and an optimized candidate and record the run",
		Long: `compare scores the baseline and optimized candidates on the val split and the
optimized candidate on the test split. The response cache is bypassed. The run
is written to <results>/runs/<case>/ and appended to the metrics CSV and any
configured PostgreSQL or Elasticsearch sink.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			baseline, err := app.LoadCandidate(opts.Baseline)
			if err != nil {
				return err
			}
			optimized, err := app.LoadCandidate(opts.Optimized)
			if err != nil {
				return err
			}

			h, closeFn, err := loadHarness(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ds, err := h.LoadDataset(cfg.DatasetPath)
			if err != nil {
				return err
			}

			sinks := []report.RecordSink{report.NewMasterCSV(opts.csvPath())}
			if !opts.NoSinks {
				extra, closeSinks, err := openSinks(ctx)
				if err != nil {
					return err
				}
				defer closeSinks()
				sinks = append(sinks, extra...)
			}

			run := comparison{
				adapter:   h.Adapter,
				task:      h.Task,
				models:    h.Models,
				baseline:  baseline,
				optimized: optimized,
				opts:      opts,
				sinks:     sinks,
			}
			res, err := run.execute(ctx, ds)
			if res != nil {
				if perr := res.print(cfg.Format, cmd.OutOrStdout()); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Baseline, "baseline", "b", "", "baseline candidate file")
	cmd.Flags().StringVarP(&opts.Optimized, "optimized", "o", "", "optimized candidate file")
	cmd.Flags().StringVarP(&opts.ResultsDir, "results", "r", "results", "results root for run artifacts")
	cmd.Flags().StringVar(&opts.CSVPath, "csv", "", "metrics CSV (defaults to <results>/"+masterCSVName+")")
	cmd.Flags().IntVar(&opts.Budget, "budget", 0, "optimizer budget, recorded with the run")
	cmd.Flags().StringVar(&opts.PositiveReflection, "positive-reflection", "", "whether positives were used in reflection (true/false)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-text notes for the run record")
	cmd.Flags().BoolVar(&opts.NoSinks, "no-sinks", false, "skip PostgreSQL and Elasticsearch sinks")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("optimized")

	return cmd
}

func (o compareOptions) csvPath() string {
	if o.CSVPath != "" {
		return o.CSVPath
	}
	return filepath.Join(o.ResultsDir, masterCSVName)
}

func openSinks(ctx context.Context) ([]report.RecordSink, func(), error) {
	sinkCfg, err := factory.LoadSinkConfig()
	if err != nil {
		return nil, nil, err
	}
	if sinkCfg.Empty() {
		return nil, func() {}, nil
	}
	opened, err := factory.OpenSinks(ctx, sinkCfg)
	if err != nil {
		return nil, nil, err
	}
	// Fail before any model call when a sink cannot take the record.
	if err := opened.Check(ctx); err != nil {
		opened.Close()
		return nil, nil, err
	}
	return opened.Sinks, opened.Close, nil
}

type comparison struct {
	adapter   adapter.Adapter
	task      *spec.TaskSpec
	models    engine.ModelsConfig
	baseline  adapter.Candidate
	optimized adapter.Candidate
	opts      compareOptions
	sinks     []report.RecordSink
	now       func() time.Time
}

type comparisonResult struct {
	cmp    *runner.Comparison
	report *report.Report
	runDir string
}

// execute runs the comparison and persists it. Artifacts are written before
// the record is published, so a failing sink still returns the result.
func (c comparison) execute(ctx context.Context, ds *dataset.Dataset) (*comparisonResult, error) {
	positive, err := parseOptionalBool(c.opts.PositiveReflection)
	if err != nil {
		return nil, err
	}

	rcfg := runner.DefaultConfig(c.task.Name)
	rcfg.PerfectThreshold = c.task.Scoring.Perfect()

	cmp, err := runner.New(c.adapter, rcfg).Compare(ctx, ds, c.baseline, c.optimized)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	runID := report.NewRunID()
	at := now()

	runDir, err := report.NewArtifacts(c.opts.ResultsDir).Create(c.task.Name, runID, at)
	if err != nil {
		return nil, err
	}
	if err := runDir.WritePrompts(c.baseline.SystemPrompt(), c.optimized.SystemPrompt()); err != nil {
		return nil, err
	}
	if err := runDir.WriteConfig(c.task); err != nil {
		return nil, err
	}

	rec := report.NewRunRecord(cmp, report.RecordOptions{
		RunID:              runID,
		Timestamp:          at,
		TaskModel:          c.models.Task.ID,
		ReflectionModel:    c.models.Judge.ID,
		RunDir:             runDir.Rel,
		PositiveReflection: positive,
		Budget:             optionalInt(c.opts.Budget),
		Notes:              c.opts.Notes,
	})

	r := report.Generate(cmp, report.Meta{
		RunID:       runID,
		Timestamp:   at,
		Models:      report.ModelInfo{Task: c.models.Task.ID, Reflection: c.models.Judge.ID},
		Environment: report.NewEnvironmentInfo(),
	})
	r.Record = &rec
	if err := runDir.WriteResults(r); err != nil {
		return nil, err
	}

	res := &comparisonResult{cmp: cmp, report: r, runDir: runDir.Path}
	if err := report.Publish(ctx, rec, c.sinks...); err != nil {
		slog.Error("Publishing run record failed", "run_id", runID, "error", err)
		return res, fmt.Errorf("run %s saved to %s but not every sink accepted it: %w", runID, runDir.Path, err)
	}

	slog.Info("Comparison recorded", "run_id", runID, "run_dir", runDir.Path)
	return res, nil
}

func (r *comparisonResult) print(format string, w io.Writer) error {
	if format == formatJSON {
		return writeJSON(w, r.report)
	}
	report.WriteComparisonTable(r.cmp, w)
	fmt.Fprintf(w, "\nRun %s written to %s\n", r.report.Meta.RunID, r.runDir)
	return nil
}
