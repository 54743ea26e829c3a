package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mberliner/reflexio/internal/bench/dataset"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type cliConfig struct {
	SpecPath    string
	DatasetPath string
	Format      string
	EnvPath     string
}

func (c cliConfig) validate(needSpec bool) error {
	if needSpec && c.SpecPath == "" {
		return fmt.Errorf("--spec is required")
	}
	switch c.Format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid --format %q, expected text or json", c.Format)
	}
}

func parseSplit(s string) (dataset.Split, error) {
	split, err := dataset.ParseSplit(s)
	if err != nil {
		return "", fmt.Errorf("invalid split: %w", err)
	}
	return split, nil
}

// parseOptionalBool maps "" to nil so an unset flag stays N/A in the record.
func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q: %w", s, err)
	}
	return &b, nil
}

func optionalInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
