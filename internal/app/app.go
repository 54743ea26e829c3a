// Package app wires a task descriptor to its models, response cache and
// adapter. Both entry points build their harness through Load.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/dataset"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/internal/storage/factory"
)

type Harness struct {
	Task    *spec.TaskSpec
	Adapter adapter.Adapter
	Models  engine.ModelsConfig

	cache       engine.ResponseStore
	closeModels func()
}

// Load reads the task descriptor at specPath and builds its adapter with
// model settings from the environment, overridden by the descriptor's
// models section.
func Load(ctx context.Context, specPath string) (*Harness, error) {
	task, err := spec.LoadFromFile(specPath)
	if err != nil {
		return nil, err
	}

	envModels, err := engine.LoadModelsFromEnv()
	if err != nil {
		return nil, err
	}
	models := ApplyOverrides(envModels, task.Models)

	cacheCfg, err := factory.LoadCacheConfig()
	if err != nil {
		return nil, err
	}
	var cache engine.ResponseStore
	if models.Task.Cache {
		cache, err = factory.OpenCache(ctx, cacheCfg)
		if err != nil {
			return nil, err
		}
	}

	built, closeModels, err := engine.CreateModels(models, cache, adapter.NeedsJudge(task.Type))
	if err != nil {
		_ = factory.CloseCache(cache)
		return nil, err
	}

	a, err := adapter.New(task, built)
	if err != nil {
		closeModels()
		_ = factory.CloseCache(cache)
		return nil, err
	}

	slog.Info("Harness ready",
		"case", task.Name,
		"adapter", a.Name(),
		"task_model", models.Task.ID,
		"judge_model", models.Judge.ID,
		"cache", cacheCfg.Backend,
	)
	return &Harness{
		Task:        task,
		Adapter:     a,
		Models:      models,
		cache:       cache,
		closeModels: closeModels,
	}, nil
}

func (h *Harness) Close() {
	if h.closeModels != nil {
		h.closeModels()
	}
	if err := factory.CloseCache(h.cache); err != nil {
		slog.Warn("close response cache", "error", err)
	}
}

// LoadDataset reads path, or the descriptor's dataset when path is empty.
func (h *Harness) LoadDataset(path string) (*dataset.Dataset, error) {
	if path == "" {
		path = h.Task.Dataset
	}
	if path == "" {
		return nil, apperr.NewConfig("dataset", "no dataset path given and the task descriptor names none")
	}
	return dataset.LoadFile(path, dataset.Columns{Inputs: h.Task.InputFields, Outputs: h.Task.OutputFields})
}

// ApplyOverrides replaces environment model settings with the non-empty
// fields of the descriptor's models section.
func ApplyOverrides(cfg engine.ModelsConfig, m spec.Models) engine.ModelsConfig {
	apply := func(mc *engine.ModelConfig, ref spec.ModelRef) {
		if ref.Model != "" {
			mc.ID = ref.Model
		}
		if ref.APIBase != "" {
			mc.APIBase = ref.APIBase
		}
		if ref.APIVersion != "" {
			mc.APIVersion = ref.APIVersion
		}
	}
	apply(&cfg.Task, m.Task)
	apply(&cfg.Judge, m.Judge)
	return cfg
}

// LoadCandidate reads a candidate from path. A .json file holds the full
// component map; any other file is the system prompt text.
func LoadCandidate(path string) (adapter.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidate: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var cand adapter.Candidate
		if err := json.Unmarshal(data, &cand); err != nil {
			return nil, apperr.NewConfigWrap("candidate", "parse "+path, err)
		}
		if _, ok := cand[adapter.SystemPromptComponent]; !ok {
			return nil, apperr.NewConfig("candidate", fmt.Sprintf("%s has no %q component", path, adapter.SystemPromptComponent))
		}
		return cand, nil
	}

	return adapter.Candidate{adapter.SystemPromptComponent: strings.TrimSpace(string(data))}, nil
}
