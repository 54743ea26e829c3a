package pg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mberliner/reflexio/internal/bench/report"
)

const createRunRecords = `
	CREATE TABLE IF NOT EXISTS run_records (
		run_id              TEXT PRIMARY KEY,
		recorded_at         TIMESTAMPTZ NOT NULL,
		case_name           TEXT NOT NULL,
		task_model          TEXT NOT NULL DEFAULT '',
		reflection_model    TEXT NOT NULL DEFAULT '',
		baseline_score      DOUBLE PRECISION,
		optimized_score     DOUBLE PRECISION,
		robustness_score    DOUBLE PRECISION,
		run_dir             TEXT NOT NULL DEFAULT '',
		positive_reflection BOOLEAN,
		budget              INTEGER,
		notes               TEXT NOT NULL DEFAULT ''
	)
`

const runColumns = `run_id, recorded_at, case_name, task_model, reflection_model,
	baseline_score, optimized_score, robustness_score, run_dir,
	positive_reflection, budget, notes`

// RunStore keeps run records in PostgreSQL. It implements report.RecordSink.
type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(pool *ConnectionPool) *RunStore {
	return &RunStore{db: pool.GetConn()}
}

func (s *RunStore) Name() string { return "postgres" }

// EnsureSchema creates the run_records table when migrations have not.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunRecords); err != nil {
		return fmt.Errorf("create run_records: %w", err)
	}
	return nil
}

func (s *RunStore) Save(ctx context.Context, rec report.RunRecord) error {
	cmd := `
		INSERT INTO run_records (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id) DO UPDATE SET
			optimized_score  = EXCLUDED.optimized_score,
			robustness_score = EXCLUDED.robustness_score,
			run_dir          = EXCLUDED.run_dir,
			notes            = EXCLUDED.notes
	`
	_, err := s.db.Exec(ctx, cmd,
		rec.RunID,
		rec.Timestamp,
		rec.Case,
		rec.TaskModel,
		rec.ReflectionModel,
		rec.BaselineScore,
		rec.OptimizedScore,
		rec.RobustnessScore,
		rec.RunDir,
		rec.PositiveReflection,
		rec.Budget,
		rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record %s: %w", rec.RunID, err)
	}

	slog.Debug("run record stored", "run_id", rec.RunID, "case", rec.Case)
	return nil
}

// ListByCase returns the newest records of caseName first.
func (s *RunStore) ListByCase(ctx context.Context, caseName string, limit int) ([]report.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM run_records WHERE case_name = $1 ORDER BY recorded_at DESC LIMIT $2`
	rows, err := s.db.Query(ctx, query, caseName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.RunRecord, error) {
		var rec report.RunRecord
		err := row.Scan(
			&rec.RunID,
			&rec.Timestamp,
			&rec.Case,
			&rec.TaskModel,
			&rec.ReflectionModel,
			&rec.BaselineScore,
			&rec.OptimizedScore,
			&rec.RobustnessScore,
			&rec.RunDir,
			&rec.PositiveReflection,
			&rec.Budget,
			&rec.Notes,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan run records: %w", err)
	}
	return recs, nil
}
