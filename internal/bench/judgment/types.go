// Package judgment grades free-text answers against a reference answer with
// a second model.
package judgment

import (
	"context"
	"math"
)

// Grade is one of five anchored levels.
type Grade float64

const (
	Failed  Grade = 0
	Poor    Grade = 0.25
	Partial Grade = 0.5
	Good    Grade = 0.75
	Perfect Grade = 1
)

var Levels = []Grade{Failed, Poor, Partial, Good, Perfect}

// Snap clamps v to [0, 1] and returns the nearest level. Halfway values
// round down so an ambiguous grade never inflates a score.
func Snap(v float64) Grade {
	if math.IsNaN(v) {
		return Failed
	}
	v = math.Max(0, math.Min(1, v))
	best := Failed
	bestDist := math.Inf(1)
	for _, l := range Levels {
		d := math.Abs(v - float64(l))
		if d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

func (g Grade) Valid() bool {
	for _, l := range Levels {
		if g == l {
			return true
		}
	}
	return false
}

type Case struct {
	Question  string
	Reference string
	Answer    string
}

type Verdict struct {
	Grade     Grade  `json:"grade" yaml:"grade"`
	Rationale string `json:"rationale" yaml:"rationale"`
	Raw       string `json:"raw,omitempty" yaml:"raw,omitempty"`
	// Parsed is false when the judge reply had no usable score line.
	Parsed bool `json:"parsed" yaml:"parsed"`
}

// Judge grades one answer. An error means the judge call itself failed.
type Judge interface {
	Grade(ctx context.Context, c Case) (*Verdict, error)
}
