package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/apperr"
)

func TestParseModelID(t *testing.T) {
	tests := []struct {
		id       string
		provider string
		model    string
		wantErr  bool
	}{
		{"azure/gpt-4.1-mini", ProviderAzure, "gpt-4.1-mini", false},
		{"openai/gpt-4o", ProviderOpenAI, "gpt-4o", false},
		{"gpt-4o-mini", ProviderOpenAI, "gpt-4o-mini", false},
		{"compatible/llama3.1:8b", ProviderCompatible, "llama3.1:8b", false},
		{"bedrock/claude", "", "", true},
		{"azure/", "", "", true},
		{"  ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			provider, model, err := ParseModelID(tt.id)
			if tt.wantErr {
				var ce *apperr.ConfigError
				assert.True(t, errors.As(err, &ce))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
			assert.Equal(t, tt.model, model)
		})
	}
}

func TestModelConfig_Validate(t *testing.T) {
	assert.Error(t, ModelConfig{ID: "azure/gpt-4o", APIKey: "k"}.validate(), "azure needs a base url")
	assert.Error(t, ModelConfig{ID: "openai/gpt-4o"}.validate(), "openai needs a key")
	assert.NoError(t, ModelConfig{ID: "compatible/llama3", APIBase: "http://localhost:11434/v1"}.validate())
	assert.NoError(t, ModelConfig{ID: "azure/gpt-4o", APIKey: "k", APIBase: "https://x.openai.azure.com"}.validate())
}

func TestLoadModelsFromEnv(t *testing.T) {
	t.Setenv("LLM_MODEL_TASK", "openai/gpt-4o-mini")
	t.Setenv("LLM_MODEL_REFLECTION", "openai/gpt-4o")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("LLM_CACHE", "false")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := LoadModelsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Task.ID)
	assert.Equal(t, "openai/gpt-4o", cfg.Judge.ID)
	assert.Equal(t, "secret", cfg.Judge.APIKey)
	assert.False(t, cfg.Task.Cache)
	assert.Equal(t, 5*time.Second, cfg.Task.Timeout)
	assert.Equal(t, DefaultAPIVersion, cfg.Task.APIVersion)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", context.Canceled, KindCanceled},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, KindRateLimit},
		{"auth", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, KindAuth},
		{"server", &openai.RequestError{HTTPStatusCode: 503, Err: errors.New("unavailable")}, KindServer},
		{"content filter", &openai.APIError{HTTPStatusCode: 400, Message: "blocked: content_filter"}, KindContentFilter},
		{"bad request", &openai.APIError{HTTPStatusCode: 400, Message: "bad"}, KindBadRequest},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindConnection},
		{"already classified", &TechnicalError{Kind: KindEmptyResponse, Err: errors.New("x")}, KindEmptyResponse},
		{"other", errors.New("weird"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func chatHandler(t *testing.T, calls *atomic.Int32, status int, content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = fmt.Fprintf(w, `{"error":{"message":"failure %d","type":"server_error"}}`, status)
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":"1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":%q}],"usage":{"prompt_tokens":7,"completion_tokens":2,"total_tokens":9}}`, content, finish)
	}
}

func TestOpenAIModel_Complete(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(chatHandler(t, &calls, http.StatusOK, "urgent", "stop"))
	defer srv.Close()

	m, err := NewOpenAIModel(ModelConfig{ID: "compatible/gpt-test", APIBase: srv.URL + "/v1"})
	require.NoError(t, err)

	c, err := m.Complete(context.Background(), Request{System: "classify", User: "server down", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "urgent", c.Text)
	assert.Equal(t, 7, c.PromptTokens)
	assert.Equal(t, "compatible/gpt-test", m.Name())
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIModel_SendsTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float32
		zero        bool
	}{
		{"zero stays on the wire", 0, true},
		{"non zero passes through", 0.7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]json.RawMessage
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(data, &body))
				w.Header().Set("Content-Type", "application/json")
				_, _ = fmt.Fprint(w, `{"id":"1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
			}))
			defer srv.Close()

			m, err := NewOpenAIModel(ModelConfig{ID: "compatible/m", APIBase: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = m.Complete(context.Background(), Request{User: "hi", MaxTokens: 50, Temperature: tt.temperature})
			require.NoError(t, err)

			require.Contains(t, body, "temperature")
			var got float64
			require.NoError(t, json.Unmarshal(body["temperature"], &got))
			if tt.zero {
				assert.Less(t, got, 1e-6)
			} else {
				assert.InDelta(t, 0.7, got, 1e-6)
			}
		})
	}
}

func TestOpenAIModel_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		finish string
		want   ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, "", KindRateLimit},
		{"server error", http.StatusInternalServerError, "", KindServer},
		{"content filter", http.StatusOK, "content_filter", KindContentFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(chatHandler(t, &calls, tt.status, "", tt.finish))
			defer srv.Close()

			m, err := NewOpenAIModel(ModelConfig{ID: "compatible/gpt-test", APIBase: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = m.Complete(context.Background(), Request{User: "hi"})
			var terr *TechnicalError
			require.True(t, errors.As(err, &terr), "got %v", err)
			assert.Equal(t, tt.want, terr.Kind)
			assert.EqualValues(t, 1, calls.Load(), "no retries")
		})
	}
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Close() error { return nil }

type countingModel struct {
	calls atomic.Int32
}

func (m *countingModel) Complete(_ context.Context, req Request) (*Completion, error) {
	n := m.calls.Add(1)
	return &Completion{Text: fmt.Sprintf("%s#%d", req.User, n), Model: "fake"}, nil
}
func (m *countingModel) Name() string { return "fake" }
func (m *countingModel) Close() error { return nil }

func TestCachedModel(t *testing.T) {
	inner := &countingModel{}
	m := NewCachedModel(inner, &memStore{data: map[string][]byte{}}, time.Hour)
	ctx := context.Background()
	req := Request{System: "s", User: "u"}

	first, err := m.Complete(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := m.Complete(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.EqualValues(t, 1, inner.calls.Load())

	t.Run("bypass calls through", func(t *testing.T) {
		fresh, err := m.Complete(WithoutCache(ctx), req)
		require.NoError(t, err)
		assert.False(t, fresh.Cached)
		assert.NotEqual(t, first.Text, fresh.Text)
		assert.EqualValues(t, 2, inner.calls.Load())
	})

	t.Run("different request misses", func(t *testing.T) {
		other, err := m.Complete(ctx, Request{System: "s2", User: "u"})
		require.NoError(t, err)
		assert.False(t, other.Cached)
	})
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("m", Request{System: "ab", User: "c"})
	b := CacheKey("m", Request{System: "a", User: "bc"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey("m", Request{System: "ab", User: "c"}))
	assert.NotEqual(t, a, CacheKey("m", Request{System: "ab", User: "c", Temperature: 0.7}))
}

func TestRateLimitedModel_HonoursContext(t *testing.T) {
	inner := &countingModel{}
	m := NewRateLimitedModel(inner, 0.001, 1)

	_, err := m.Complete(context.Background(), Request{User: "a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Complete(ctx, Request{User: "b"})
	var terr *TechnicalError
	require.True(t, errors.As(err, &terr))
	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestCreateModels_JudgeRequired(t *testing.T) {
	cfg := ModelsConfig{Task: ModelConfig{ID: "compatible/x", APIBase: "http://localhost:1/v1"}}

	models, cleanup, err := CreateModels(cfg, nil, false)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, models.Task)
	assert.Nil(t, models.Judge)

	_, _, err = CreateModels(cfg, nil, true)
	var ce *apperr.ConfigError
	assert.True(t, errors.As(err, &ce))
}
