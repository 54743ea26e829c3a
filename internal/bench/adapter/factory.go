package adapter

import (
	"fmt"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/judgment"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

// New selects the adapter for task.Type.
func New(task *spec.TaskSpec, models *engine.Models) (Adapter, error) {
	if task == nil {
		return nil, apperr.NewConfig("task", "task spec is required")
	}
	if models == nil {
		return nil, apperr.NewConfig("models", "models are required")
	}

	switch task.Type {
	case spec.Classifier:
		return NewClassifier(task, models.Task)
	case spec.Extractor:
		return NewExtractor(task, models.Task)
	case spec.SQL:
		return NewSQL(task, models.Task)
	case spec.RAGJudge:
		if models.Judge == nil {
			return nil, newMissingJudge()
		}
		return NewRAGJudge(task, models.Task, judgment.NewLLMJudge(models.Judge))
	default:
		return nil, apperr.NewConfig("type", fmt.Sprintf("unknown adapter type %q", task.Type))
	}
}

// NeedsJudge reports whether the adapter for t calls a judge model.
func NeedsJudge(t spec.AdapterType) bool {
	return t == spec.RAGJudge
}

func newMissingJudge() error {
	return apperr.NewConfig("models.judge", "rag_judge needs a judge model (LLM_MODEL_REFLECTION)")
}
