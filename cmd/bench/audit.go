package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/app"
	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/judgment"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

type auditOptions struct {
	Candidate string
	Split     string
	Out       string
}

func auditCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Export judge verdicts for human review and measure agreement",
	}
	cmd.AddCommand(auditExportCmd(cfg), auditAgreementCmd())
	return cmd
}

func auditExportCmd(cfg *cliConfig) *cobra.Command {
	opts := auditOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Grade a candidate with the judge and write the verdicts to YAML",
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
			af, err := runAuditExport(cmd.Context(), h.Adapter, h.Task, h.Models.Judge.ID, ds.Split(split), cand)
			if err != nil {
				return err
			}
			if err := judgment.ExportForAudit(af, opts.Out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d verdicts to %s\n", len(af.Entries), opts.Out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Candidate, "candidate", "c", "", "candidate file (.txt system prompt or .json components)")
	cmd.Flags().StringVar(&opts.Split, "split", string(dataset.Val), "dataset split to grade")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "audit.yaml", "audit file to write")
	_ = cmd.MarkFlagRequired("candidate")

	return cmd
}

func auditAgreementCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "agreement <audit.yaml>",
		Short:       "Report how often reviewers agreed with the judge",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoSpec: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			af, err := judgment.ImportAudit(args[0])
			if err != nil {
				return err
			}
			return writeAgreement(cmd.OutOrStdout(), af)
		},
	}
}

func runAuditExport(ctx context.Context, a adapter.Adapter, task *spec.TaskSpec, judgeID string, batch []dataset.Example, cand adapter.Candidate) (*judgment.AuditFile, error) {
	if task.Type != spec.RAGJudge {
		return nil, apperr.NewConfig("type", fmt.Sprintf("audit needs a rag_judge task, got %s", task.Type))
	}
	res, err := a.Evaluate(ctx, batch, cand, false)
	if err != nil {
		return nil, err
	}

	question := task.InputFields[0]
	if slices.Contains(task.InputFields, "question") {
		question = "question"
	}

	af := &judgment.AuditFile{Judge: judgeID}
	for _, out := range res.Outputs {
		if out.Verdict == nil {
			continue
		}
		c := judgment.Case{
			Question:  out.Input[question],
			Reference: out.Expected,
			Answer:    out.Generated,
		}
		af.Entries = append(af.Entries, judgment.NewAuditEntry(out.BatchIndex, c, *out.Verdict))
	}
	return af, nil
}

func writeAgreement(w io.Writer, af *judgment.AuditFile) error {
	rate, reviewed := judgment.Agreement(af)
	if reviewed == 0 {
		_, err := fmt.Fprintf(w, "No reviewed entries (%d pending)\n", len(af.Entries))
		return err
	}
	_, err := fmt.Fprintf(w, "Agreement: %.1f%% over %d reviewed of %d entries\n", rate*100, reviewed, len(af.Entries))
	return err
}
