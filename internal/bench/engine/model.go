// Package engine wraps the chat models the harness calls: the task model
// under optimization and the judge model.
package engine

import (
	"context"
	"time"
)

type Role string

const (
	RoleTask  Role = "task"
	RoleJudge Role = "judge"
)

type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

type Completion struct {
	Text             string        `json:"text"`
	Model            string        `json:"model"`
	Latency          time.Duration `json:"latency"`
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty"`
	Cached           bool          `json:"cached,omitempty"`
}

// Model performs one chat completion. Any returned error is a technical
// failure of the call, never a judgement on the answer.
type Model interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	Name() string
	Close() error
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req Request) (*Completion, error)

func (f ModelFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f(ctx, req)
}

func (f ModelFunc) Name() string { return "func" }
func (f ModelFunc) Close() error { return nil }
