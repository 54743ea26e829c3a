package dataset

import "fmt"

type Split string

const (
	Train Split = "train"
	Val   Split = "val"
	Test  Split = "test"
)

func ParseSplit(s string) (Split, error) {
	switch Split(s) {
	case Train, Val, Test:
		return Split(s), nil
	}
	return "", fmt.Errorf("unknown split %q (want train, val or test)", s)
}

// Example is one labeled row. It is not modified after loading.
type Example struct {
	Row      int               `json:"row,omitempty" yaml:"row,omitempty"`
	Split    Split             `json:"split,omitempty" yaml:"split,omitempty"`
	Inputs   map[string]string `json:"inputs" yaml:"inputs"`
	Expected map[string]string `json:"expected" yaml:"expected"`
}

func (e Example) Input(field string) string {
	return e.Inputs[field]
}

func (e Example) Expect(field string) string {
	return e.Expected[field]
}

// Dataset holds the examples of one file grouped by split.
type Dataset struct {
	Train []Example
	Val   []Example
	Test  []Example
	// Dropped counts rows skipped for having no split.
	Dropped int
}

func (d *Dataset) Split(s Split) []Example {
	switch s {
	case Train:
		return d.Train
	case Val:
		return d.Val
	case Test:
		return d.Test
	}
	return nil
}

func (d *Dataset) Len() int {
	return len(d.Train) + len(d.Val) + len(d.Test)
}
