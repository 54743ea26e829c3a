package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	NotAvailable = "N/A"
	csvDelimiter = ';'
	csvDecimals  = 4
)

var MasterHeader = []string{
	"Run ID", "Date", "Time", "Case", "Task Model", "Reflection Model",
	"Baseline Score", "Optimized Score", "Robustness Score", "Improvement",
	"Run Directory", "Positive Reflection", "Budget", "Notes",
}

// MasterCSV appends run records to a spreadsheet-friendly file: semicolon
// separated with comma decimals. The header is written when the file is
// created.
type MasterCSV struct {
	path string
	mu   sync.Mutex
}

func NewMasterCSV(path string) *MasterCSV {
	return &MasterCSV{path: path}
}

func (m *MasterCSV) Name() string { return "csv" }

func (m *MasterCSV) Path() string { return m.path }

func (m *MasterCSV) Save(_ context.Context, rec RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open master csv: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat master csv: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = csvDelimiter
	if info.Size() == 0 {
		if err := w.Write(MasterHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(recordRow(rec)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	return w.Error()
}

func recordRow(rec RunRecord) []string {
	var improvement *float64
	if rec.BaselineScore != nil && rec.OptimizedScore != nil {
		v := *rec.OptimizedScore - *rec.BaselineScore
		improvement = &v
	}
	return []string{
		rec.RunID,
		rec.Timestamp.Format(time.DateOnly),
		rec.Timestamp.Format(time.TimeOnly),
		rec.Case,
		orNA(rec.TaskModel),
		orNA(rec.ReflectionModel),
		FormatDecimal(rec.BaselineScore),
		FormatDecimal(rec.OptimizedScore),
		FormatDecimal(rec.RobustnessScore),
		FormatDecimal(improvement),
		filepath.ToSlash(rec.RunDir),
		formatFlag(rec.PositiveReflection),
		formatInt(rec.Budget),
		rec.Notes,
	}
}

// FormatDecimal writes v with four decimals and a comma separator.
func FormatDecimal(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strings.Replace(strconv.FormatFloat(*v, 'f', csvDecimals, 64), ".", ",", 1)
}

func ParseDecimal(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == NotAvailable {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return &v, nil
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func formatFlag(b *bool) string {
	switch {
	case b == nil:
		return NotAvailable
	case *b:
		return "yes"
	default:
		return "no"
	}
}

func formatInt(n *int) string {
	if n == nil {
		return NotAvailable
	}
	return strconv.Itoa(*n)
}

// ReadMasterCSV reads back every record of a master file.
func ReadMasterCSV(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open master csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = csvDelimiter
	r.FieldsPerRecord = len(MasterHeader)

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []RunRecord
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (RunRecord, error) {
	ts, err := time.ParseInLocation(time.DateTime, row[1]+" "+row[2], time.Local)
	if err != nil {
		return RunRecord{}, fmt.Errorf("run %s: parse timestamp: %w", row[0], err)
	}
	rec := RunRecord{
		RunID:     row[0],
		Timestamp: ts,
		Case:      row[3],
		TaskModel: fromNA(row[4]),
		RunDir:    row[10],
		Notes:     row[13],
	}
	rec.ReflectionModel = fromNA(row[5])
	for i, dst := range []**float64{&rec.BaselineScore, &rec.OptimizedScore, &rec.RobustnessScore} {
		if *dst, err = ParseDecimal(row[6+i]); err != nil {
			return RunRecord{}, fmt.Errorf("run %s: %w", row[0], err)
		}
	}
	switch row[11] {
	case "yes", "no":
		b := row[11] == "yes"
		rec.PositiveReflection = &b
	}
	if row[12] != NotAvailable {
		n, err := strconv.Atoi(row[12])
		if err != nil {
			return RunRecord{}, fmt.Errorf("run %s: parse budget: %w", row[0], err)
		}
		rec.Budget = &n
	}
	return rec, nil
}

func fromNA(s string) string {
	if s == NotAvailable {
		return ""
	}
	return s
}
