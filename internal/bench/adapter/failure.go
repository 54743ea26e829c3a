package adapter

import (
	"errors"
	"log/slog"

	"github.com/mberliner/reflexio/internal/bench/engine"
)

const (
	StageGeneration = "generation"
	StageJudge      = "judge"

	previewLength = 100
)

// stageError marks an error from a model call made while scoring, such as
// the judge call.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func judgeFailure(err error) error {
	return &stageError{stage: StageJudge, err: err}
}

// newErrorRecord turns a failed model call into the record kept instead of
// a score.
func newErrorRecord(index int, input string, err error) ErrorRecord {
	stage := StageGeneration
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
	}
	return ErrorRecord{
		BatchIndex:   index,
		InputPreview: preview(input),
		ErrorType:    string(engine.Classify(err)),
		Stage:        stage,
		Message:      err.Error(),
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}

func logDiscarded(adapter string, errs []ErrorRecord, total int) {
	if len(errs) == 0 {
		return
	}
	byType := make(map[string]int)
	for _, e := range errs {
		byType[e.ErrorType]++
	}
	attrs := []any{"adapter", adapter, "discarded", len(errs), "total", total, "valid", total - len(errs)}
	for t, n := range byType {
		attrs = append(attrs, "type_"+t, n)
	}
	if len(errs) == total {
		slog.Warn("every example failed technically, batch has no scores", attrs...)
		return
	}
	slog.Warn("technical failures discarded", attrs...)
}
