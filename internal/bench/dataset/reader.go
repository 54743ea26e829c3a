package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

const splitColumn = "split"

type Columns struct {
	Inputs []string
	// Outputs defaults to every column that is neither an input nor split.
	Outputs []string
}

func LoadFile(path string, cols Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	slog.Info("dataset loaded", "path", path, "train", len(ds.Train), "val", len(ds.Val), "test", len(ds.Test), "dropped", ds.Dropped)
	return ds, nil
}

// Read parses a CSV with a header row. Rows with an empty split are dropped
// with a warning; an unrecognised split is an error.
func Read(r io.Reader, cols Columns) (*Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	if err := checkColumns(headers, cols); err != nil {
		return nil, err
	}
	outputs := cols.Outputs
	if len(outputs) == 0 {
		outputs = remainingColumns(headers, cols.Inputs)
	}

	ds := &Dataset{}
	line := 1
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		record := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = strings.TrimSpace(row[i])
			}
		}

		rawSplit := strings.ToLower(record[splitColumn])
		if rawSplit == "" {
			slog.Warn("dropping row without split", "line", line)
			ds.Dropped++
			continue
		}
		split, err := ParseSplit(rawSplit)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ex := Example{
			Row:      line,
			Split:    split,
			Inputs:   pick(record, cols.Inputs),
			Expected: pick(record, outputs),
		}
		switch split {
		case Train:
			ds.Train = append(ds.Train, ex)
		case Val:
			ds.Val = append(ds.Val, ex)
		case Test:
			ds.Test = append(ds.Test, ex)
		}
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("no usable rows")
	}
	return ds, nil
}

func checkColumns(headers []string, cols Columns) error {
	if !slices.Contains(headers, splitColumn) {
		return fmt.Errorf("missing %q column", splitColumn)
	}
	if len(cols.Inputs) == 0 {
		return fmt.Errorf("no input columns configured")
	}
	for _, c := range append(slices.Clone(cols.Inputs), cols.Outputs...) {
		if !slices.Contains(headers, c) {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}

func remainingColumns(headers, inputs []string) []string {
	var out []string
	for _, h := range headers {
		if h == "" || h == splitColumn || slices.Contains(inputs, h) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func pick(record map[string]string, keys []string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = record[k]
	}
	return m
}
