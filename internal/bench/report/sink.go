package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// RecordSink stores run records somewhere other than the run directory.
type RecordSink interface {
	Save(ctx context.Context, rec RunRecord) error
	Name() string
}

// Publish saves rec to every sink. A failing sink does not stop the
// others; all failures are joined in the returned error.
func Publish(ctx context.Context, rec RunRecord, sinks ...RecordSink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Save(ctx, rec); err != nil {
			slog.Warn("run record sink failed", "sink", s.Name(), "run_id", rec.RunID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		slog.Info("run record saved", "sink", s.Name(), "run_id", rec.RunID)
	}
	return errors.Join(errs...)
}
