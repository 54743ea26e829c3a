package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mberliner/reflexio/internal/bench/metrics"
	"github.com/mberliner/reflexio/internal/bench/reflective"
	"github.com/mberliner/reflexio/internal/bench/runner"
)

const feedbackWidth = 80

func WriteComparisonTable(cmp *runner.Comparison, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Candidate Comparison: %s (%s) ===\n\n", cmp.Case, cmp.Adapter)
	writeSummaryTable(tw, cmp.Results())
	writeLatencyTable(tw, cmp.Results())

	fmt.Fprintf(tw, "Improvement on %s: %+.4f\n", cmp.Config.BaselineSplit, cmp.Improvement())
	if cmp.Robustness == nil {
		fmt.Fprintf(tw, "Robustness on %s: N/A\n", cmp.Config.RobustnessSplit)
	}
	tw.Flush()
}

func WriteEvaluationTable(sr *runner.SplitResult, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Evaluation: %s on %s ===\n\n", sr.Label, sr.Split)
	writeSummaryTable(tw, []*runner.SplitResult{sr})
	writeLatencyTable(tw, []*runner.SplitResult{sr})
	writePerExampleTable(tw, sr)
	tw.Flush()
}

func writeSummaryTable(tw *tabwriter.Writer, results []*runner.SplitResult) {
	header := []string{"Candidate", "Split", "Mean", "Pass", "Min", "Max", "Valid", "Discarded", "Levels"}
	writeHeader(tw, header)

	for _, sr := range results {
		s := sr.Summary
		row := []string{
			sr.Label,
			string(sr.Split),
			fmt.Sprintf("%.4f", s.Mean),
			fmt.Sprintf("%.4f", s.PassRate),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Max),
			fmt.Sprintf("%d/%d", s.Valid, s.Total),
			fmt.Sprintf("%d", s.Discarded),
			formatLevels(s.Levels),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	fmt.Fprintln(tw)
}

func writeLatencyTable(tw *tabwriter.Writer, results []*runner.SplitResult) {
	fmt.Fprintf(tw, "Generation latency\n\n")
	writeHeader(tw, []string{"Candidate", "Split", "Min", "p50", "p90", "p95", "Max", "Mean", "Stddev", "Wall"})

	for _, sr := range results {
		s := sr.Latency
		row := []string{
			sr.Label,
			string(sr.Split),
			fmtDuration(s.Min),
			fmtDuration(s.P50()),
			fmtDuration(s.P90()),
			fmtDuration(s.P95()),
			fmtDuration(s.Max),
			fmtDuration(s.Mean),
			fmtDuration(s.Stddev),
			fmtDuration(sr.Elapsed),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	fmt.Fprintln(tw)
}

func writePerExampleTable(tw *tabwriter.Writer, sr *runner.SplitResult) {
	if sr.Result == nil {
		return
	}
	fmt.Fprintf(tw, "Per-example results\n\n")
	writeHeader(tw, []string{"#", "Score", "Expected", "Generated", "Status"})

	res := sr.Result
	for i, o := range res.Outputs {
		status := "OK"
		if o.FormatFailure {
			status = "FORMAT"
		}
		row := []string{
			fmt.Sprintf("%d", o.BatchIndex),
			fmt.Sprintf("%.2f", res.Scores[i]),
			clip(o.Expected, 30),
			clip(o.Generated, 30),
			status,
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	for _, e := range res.Errors {
		row := []string{
			fmt.Sprintf("%d", e.BatchIndex),
			"-",
			"-",
			clip(e.InputPreview, 30),
			"ERR " + e.ErrorType,
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	fmt.Fprintln(tw)
}

// WriteReflectiveTable lists a curated reflective dataset, negatives first.
func WriteReflectiveTable(data []reflective.Datum, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	neg, pos := reflective.Count(data)
	fmt.Fprintf(tw, "\n=== Reflective dataset: %d negative, %d positive ===\n\n", neg, pos)

	writeHeader(tw, []string{"#", "Kind", "Score", "Feedback"})
	for _, d := range data {
		row := []string{
			fmt.Sprintf("%d", d.BatchIndex),
			string(d.Kind),
			fmt.Sprintf("%.2f", d.Score),
			clip(d.Feedback, feedbackWidth),
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

func formatLevels(levels map[string]int) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(levels))
	for _, k := range metrics.Levels(levels) {
		parts = append(parts, fmt.Sprintf("%s:%d", k, levels[k]))
	}
	return strings.Join(parts, " ")
}

// clip keeps table cells on one line.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func fmtDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
