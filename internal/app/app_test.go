package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/spec"
)

const taskYAML = `
name: email_urgency
type: classifier
dataset: emails.csv
input_fields: [text]
output_fields: [urgency]
valid_labels: [urgent, normal, low]
models:
  task: {model: "compatible/llama3", api_base: "http://localhost:11434/v1"}
`

const emailsCSV = `text,urgency,split
server down,urgent,train
lunch menu,low,val
payroll failed,urgent,val
newsletter,low,test
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFile(t, dir, "task.yaml", taskYAML)
	writeFile(t, dir, "emails.csv", emailsCSV)

	t.Setenv("LLM_MODEL_TASK", "azure/gpt-4.1-mini")
	t.Setenv("LLM_MODEL_REFLECTION", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_CACHE", "false")
	t.Setenv("CACHE_BACKEND", "none")

	h, err := Load(context.Background(), specPath)
	require.NoError(t, err)
	t.Cleanup(h.Close)

	assert.Equal(t, "classifier", h.Adapter.Name())
	assert.Equal(t, "compatible/llama3", h.Models.Task.ID)
	assert.Equal(t, "http://localhost:11434/v1", h.Models.Task.APIBase)

	ds, err := h.LoadDataset("")
	require.NoError(t, err)
	assert.Len(t, ds.Train, 1)
	assert.Len(t, ds.Val, 2)
	assert.Len(t, ds.Test, 1)
	assert.Equal(t, "urgent", ds.Val[1].Expect("urgency"))
}

func TestLoad_RAGWithoutJudge(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFile(t, dir, "task.yaml", `
name: support_rag
type: rag_judge
models:
  task: {model: "compatible/llama3", api_base: "http://localhost:11434/v1"}
`)
	t.Setenv("LLM_MODEL_REFLECTION", "")
	t.Setenv("LLM_CACHE", "false")
	t.Setenv("CACHE_BACKEND", "none")

	_, err := Load(context.Background(), specPath)
	var ce *apperr.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "LLM_MODEL_REFLECTION", ce.Field)
}

func TestLoadDataset_NoPath(t *testing.T) {
	h := &Harness{Task: &spec.TaskSpec{Name: "x"}}
	_, err := h.LoadDataset("")
	var ce *apperr.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestApplyOverrides(t *testing.T) {
	base := engine.ModelsConfig{
		Task:  engine.ModelConfig{ID: "azure/gpt-4.1-mini", APIBase: "https://a.example", APIVersion: "v1", APIKey: "k"},
		Judge: engine.ModelConfig{ID: "azure/gpt-4o", APIBase: "https://a.example", APIKey: "k"},
	}

	got := ApplyOverrides(base, spec.Models{
		Task:  spec.ModelRef{Model: "openai/gpt-4o-mini"},
		Judge: spec.ModelRef{APIBase: "https://judge.example", APIVersion: "v2"},
	})

	assert.Equal(t, "openai/gpt-4o-mini", got.Task.ID)
	assert.Equal(t, "https://a.example", got.Task.APIBase)
	assert.Equal(t, "v1", got.Task.APIVersion)
	assert.Equal(t, "k", got.Task.APIKey)
	assert.Equal(t, "azure/gpt-4o", got.Judge.ID)
	assert.Equal(t, "https://judge.example", got.Judge.APIBase)
	assert.Equal(t, "v2", got.Judge.APIVersion)

	assert.Equal(t, base, ApplyOverrides(base, spec.Models{}))
}

func TestLoadCandidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    adapter.Candidate
		wantErr bool
	}{
		{
			name:    "text file is the system prompt",
			file:    "prompt.txt",
			content: "Classify the email.\n",
			want:    adapter.Candidate{"system_prompt": "Classify the email."},
		},
		{
			name:    "json component map",
			file:    "candidate.json",
			content: `{"system_prompt": "Be terse.", "notes": "v2"}`,
			want:    adapter.Candidate{"system_prompt": "Be terse.", "notes": "v2"},
		},
		{
			name:    "json without system prompt",
			file:    "bad.json",
			content: `{"prompt": "x"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			file:    "broken.json",
			content: `{"system_prompt": `,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadCandidate(writeFile(t, dir, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := LoadCandidate(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
