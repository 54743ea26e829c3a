package report

import (
	"runtime"
	"time"

	"github.com/mberliner/reflexio/internal/bench/metrics"
	"github.com/mberliner/reflexio/internal/bench/runner"
	"github.com/mberliner/reflexio/pkg/utils"
)

// Report is the results.json document of a comparison run.
type Report struct {
	Meta        Meta           `json:"meta"`
	Case        string         `json:"case"`
	Adapter     string         `json:"adapter"`
	Evaluations []Evaluation   `json:"evaluations"`
	Improvement float64        `json:"improvement"`
	Latency     LatencySummary `json:"latency"`
	Record      *RunRecord     `json:"record,omitempty"`
}

type Meta struct {
	RunID       string          `json:"run_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Models      ModelInfo       `json:"models"`
	Environment EnvironmentInfo `json:"environment"`
}

type ModelInfo struct {
	Task       string `json:"task"`
	Reflection string `json:"reflection,omitempty"`
}

type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

// Evaluation is one candidate on one split, without per-example detail.
type Evaluation struct {
	Label   string          `json:"label"`
	Split   string          `json:"split"`
	Summary metrics.Summary `json:"summary"`
	Errors  map[string]int  `json:"errors,omitempty"`
	Latency LatencySummary  `json:"latency"`
}

type LatencySummary struct {
	Mean    time.Duration `json:"mean"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	Max     time.Duration `json:"max"`
	Samples int           `json:"samples"`
}

func fromLatencyStats(s runner.LatencyStats) LatencySummary {
	return LatencySummary{
		Mean:    s.Mean,
		P50:     s.P50(),
		P95:     s.P95(),
		Max:     s.Max,
		Samples: s.SampleCount,
	}
}

// Generate builds the results document for cmp.
func Generate(cmp *runner.Comparison, meta Meta) *Report {
	r := &Report{
		Meta:        meta,
		Case:        cmp.Case,
		Adapter:     cmp.Adapter,
		Improvement: utils.RoundDecimal(cmp.Improvement(), 4),
	}

	var all []runner.LatencyStats
	for _, sr := range cmp.Results() {
		e := Evaluation{
			Label:   sr.Label,
			Split:   string(sr.Split),
			Summary: sr.Summary,
			Latency: fromLatencyStats(sr.Latency),
		}
		if sr.Result != nil && len(sr.Result.Errors) > 0 {
			e.Errors = make(map[string]int)
			for _, rec := range sr.Result.Errors {
				e.Errors[rec.ErrorType]++
			}
		}
		r.Evaluations = append(r.Evaluations, e)
		all = append(all, sr.Latency)
	}
	r.Latency = fromLatencyStats(runner.MergeLatencyStats(all...))
	return r
}
