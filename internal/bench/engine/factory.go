package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mberliner/reflexio/internal/apperr"
)

const DefaultCacheTTL = 7 * 24 * time.Hour

type Models struct {
	Task  Model
	Judge Model
}

// New builds one model client with pacing and caching layered on top as
// configured. store may be nil, which disables caching.
func New(cfg ModelConfig, store ResponseStore, opts ...OpenAIOption) (Model, error) {
	client, err := NewOpenAIModel(cfg, opts...)
	if err != nil {
		return nil, err
	}
	var m Model = client
	if cfg.RequestsPerSecond > 0 {
		m = NewRateLimitedModel(m, cfg.RequestsPerSecond, 1)
	}
	if cfg.Cache && store != nil {
		m = NewCachedModel(m, store, DefaultCacheTTL)
	}
	return m, nil
}

// CreateModels builds the task model and, when needJudge is set, the judge
// model. The returned cleanup closes every client created.
func CreateModels(cfg ModelsConfig, store ResponseStore, needJudge bool, opts ...OpenAIOption) (*Models, func(), error) {
	var closers []Model
	cleanup := func() {
		for _, m := range closers {
			if err := m.Close(); err != nil {
				slog.Warn("close model", "model", m.Name(), "error", err)
			}
		}
	}

	task, err := New(cfg.Task, store, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("task model: %w", err)
	}
	closers = append(closers, task)
	models := &Models{Task: task}

	if needJudge {
		if cfg.Judge.ID == "" {
			cleanup()
			return nil, nil, apperr.NewConfig("LLM_MODEL_REFLECTION", "judge model is required for rag_judge tasks")
		}
		judge, err := New(cfg.Judge, store, opts...)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("judge model: %w", err)
		}
		closers = append(closers, judge)
		models.Judge = judge
	}

	return models, cleanup, nil
}
