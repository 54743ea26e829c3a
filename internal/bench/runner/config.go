package runner

import "github.com/mberliner/reflexio/internal/bench/dataset"

const (
	DefaultBaselineSplit   = dataset.Val
	DefaultRobustnessSplit = dataset.Test
)

type Config struct {
	// Case names the run in records and artifact paths.
	Case string
	// BaselineSplit is where baseline and optimized candidates are compared.
	BaselineSplit dataset.Split
	// RobustnessSplit is held out and only scores the optimized candidate.
	RobustnessSplit dataset.Split
	// PerfectThreshold is the pass mark for pass rates.
	PerfectThreshold float64
	CaptureTraces    bool
}

func DefaultConfig(caseName string) Config {
	return Config{
		Case:             caseName,
		BaselineSplit:    DefaultBaselineSplit,
		RobustnessSplit:  DefaultRobustnessSplit,
		PerfectThreshold: 1,
	}
}
