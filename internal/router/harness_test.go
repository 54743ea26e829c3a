package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/bench/adapter"
	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/internal/dto"
	"github.com/mberliner/reflexio/internal/server"
)

func newTestServer(t *testing.T, model engine.Model) *server.Server {
	t.Helper()

	task := &spec.TaskSpec{
		Name:         "email_urgency",
		Type:         spec.Classifier,
		InputFields:  []string{"text"},
		OutputFields: []string{"urgency"},
		ValidLabels:  []string{"urgent", "not_urgent"},
		Reflection:   spec.Reflection{MaxPositiveFraction: 0.5},
		Execution:    spec.Execution{NumThreads: 2},
	}
	require.NoError(t, spec.Validate(task))

	a, err := adapter.NewClassifier(task, model)
	require.NoError(t, err)

	s := server.New(&server.Config{Port: "0", CorsOrigins: []string{"*"}, BodyLimit: "1M"}).
		SetupMiddlewares().
		SetupErrorHandler()
	NewHarnessRouter(s.Echo, a, *task).Bind()
	return s
}

func labels(byText map[string]string) engine.Model {
	return engine.ModelFunc(func(ctx context.Context, req engine.Request) (*engine.Completion, error) {
		if engine.CacheBypassed(ctx) && req.User == "assert-bypass" {
			return &engine.Completion{Text: "urgent"}, nil
		}
		text, ok := byText[req.User]
		if !ok {
			return nil, errors.New("connection reset by peer")
		}
		return &engine.Completion{Text: text}, nil
	})
}

func do(t *testing.T, s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const evaluateBody = `{
	"candidate": {"system_prompt": "Classify urgency."},
	"capture_traces": true,
	"batch": [
		{"inputs": {"text": "server down"}, "expected": {"urgency": "urgent"}},
		{"inputs": {"text": "lunch menu"}, "expected": {"urgency": "not_urgent"}},
		{"inputs": {"text": "flaky"}, "expected": {"urgency": "urgent"}}
	]
}`

func TestHarnessRouter_Evaluate(t *testing.T) {
	s := newTestServer(t, labels(map[string]string{
		"server down": "urgent",
		"lunch menu":  "urgent",
	}))

	rec := do(t, s, http.MethodPost, "/api/v1/evaluate", evaluateBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "classifier", resp.Adapter)
	assert.Equal(t, []float64{1, 0}, resp.Scores)
	require.Len(t, resp.Outputs, 2)
	assert.Equal(t, 1, resp.Outputs[1].BatchIndex)
	assert.Len(t, resp.Trajectories, 2)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 2, resp.Errors[0].BatchIndex)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Summary.Discarded)
	assert.InDelta(t, 0.5, resp.Summary.Mean, 1e-9)
}

func TestHarnessRouter_EvaluateEmptyBatch(t *testing.T) {
	s := newTestServer(t, labels(nil))

	rec := do(t, s, http.MethodPost, "/api/v1/evaluate", `{"candidate": {"system_prompt": "x"}, "batch": []}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "scores")))
	assert.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "errors")))
}

func TestHarnessRouter_EvaluateRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, labels(nil))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"candidate": `},
		{"missing candidate", `{"batch": []}`},
		{"example without inputs", `{"candidate": {}, "batch": [{"expected": {"urgency": "urgent"}}]}`},
		{"example missing the input field", `{"candidate": {}, "batch": [{"inputs": {"body": "x"}, "expected": {"urgency": "urgent"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/evaluate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestHarnessRouter_EvaluateDisableCache(t *testing.T) {
	s := newTestServer(t, labels(nil))

	body := `{"candidate": {}, "disable_cache": true, "batch": [{"inputs": {"text": "assert-bypass"}, "expected": {"urgency": "urgent"}}]}`
	rec := do(t, s, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []float64{1}, resp.Scores)
	assert.Empty(t, resp.Errors)
}

func TestHarnessRouter_ReflectiveDataset(t *testing.T) {
	s := newTestServer(t, labels(map[string]string{
		"server down": "urgent",
		"lunch menu":  "urgent",
	}))

	rec := do(t, s, http.MethodPost, "/api/v1/evaluate", evaluateBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var eval struct {
		adapter.EvaluationResult
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))

	var in struct {
		Batch json.RawMessage `json:"batch"`
	}
	require.NoError(t, json.Unmarshal([]byte(evaluateBody), &in))
	payload, err := json.Marshal(map[string]any{"batch": in.Batch, "result": eval.EvaluationResult})
	require.NoError(t, err)

	rec = do(t, s, http.MethodPost, "/api/v1/reflective-dataset", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ReflectiveDatasetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Negatives)
	assert.Equal(t, 1, resp.Positives)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "lunch menu", resp.Data[0].Input["text"])
	assert.Equal(t, 0.0, resp.Data[0].Score)
	assert.True(t, strings.HasPrefix(resp.Data[1].Feedback, "SUCCESSFUL EXAMPLE: "))
}

func TestHarnessRouter_ReflectiveDatasetRequiresResult(t *testing.T) {
	s := newTestServer(t, labels(nil))

	rec := do(t, s, http.MethodPost, "/api/v1/reflective-dataset", `{"batch": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHarnessRouter_Task(t *testing.T) {
	s := newTestServer(t, labels(nil))

	rec := do(t, s, http.MethodGet, "/api/v1/task", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var task spec.TaskSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "email_urgency", task.Name)
	assert.Equal(t, spec.Classifier, task.Type)
}

func mustField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return m[field]
}
