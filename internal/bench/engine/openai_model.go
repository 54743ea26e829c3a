package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/mberliner/reflexio/internal/bench/engine")

// OpenAIModel talks to OpenAI, Azure OpenAI or any endpoint that speaks the
// OpenAI chat completions API.
type OpenAIModel struct {
	id      string
	model   string
	client  *openai.Client
	timeout time.Duration
}

type OpenAIOption func(*openai.ClientConfig)

func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(cfg *openai.ClientConfig) {
		cfg.HTTPClient = c
	}
}

func NewOpenAIModel(cfg ModelConfig, opts ...OpenAIOption) (*OpenAIModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	provider, model, _ := ParseModelID(cfg.ID)

	var clientCfg openai.ClientConfig
	switch provider {
	case ProviderAzure:
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.APIBase)
		clientCfg.APIVersion = cfg.APIVersion
		if clientCfg.APIVersion == "" {
			clientCfg.APIVersion = DefaultAPIVersion
		}
	case ProviderCompatible:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = cfg.APIBase
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.APIBase != "" {
			clientCfg.BaseURL = cfg.APIBase
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	slog.Info("model client initialized", "model", cfg.ID, "provider", provider, "timeout", timeout)
	return &OpenAIModel{
		id:      cfg.ID,
		model:   model,
		client:  openai.NewClientWithConfig(clientCfg),
		timeout: timeout,
	}, nil
}

func (m *OpenAIModel) Complete(ctx context.Context, req Request) (*Completion, error) {
	ctx, span := tracer.Start(ctx, "engine.Complete", trace.WithAttributes(
		attribute.String("llm.model", m.id),
		attribute.Int("llm.max_tokens", req.MaxTokens),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	start := time.Now()
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: wireTemperature(req.Temperature),
	})
	latency := time.Since(start)
	if err != nil {
		terr := Wrap(m.id, err)
		span.RecordError(terr)
		span.SetStatus(codes.Error, string(terr.Kind))
		return nil, terr
	}

	if len(resp.Choices) == 0 {
		terr := &TechnicalError{Kind: KindEmptyResponse, Model: m.id, Err: errors.New("no choices returned")}
		span.SetStatus(codes.Error, string(terr.Kind))
		return nil, terr
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		terr := &TechnicalError{Kind: KindContentFilter, Model: m.id, Err: fmt.Errorf("response blocked by content filter")}
		span.SetStatus(codes.Error, string(terr.Kind))
		return nil, terr
	}

	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
	)
	return &Completion{
		Text:             choice.Message.Content,
		Model:            m.id,
		Latency:          latency,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (m *OpenAIModel) Name() string { return m.id }
func (m *OpenAIModel) Close() error { return nil }

// wireTemperature keeps a requested 0 on the wire. go-openai drops a zero
// Temperature through omitempty and providers then sample at their default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
