package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/gemini"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/observability"
	"github.com/boddenberg/schemexpert-bfa-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	genai "google.golang.org/genai"
)

// fakeGemini emulates the generateContent REST endpoint.
func fakeGemini(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		raw, _ := io.ReadAll(r.Body)
		body := map[string]any{}
		_ = json.Unmarshal(raw, &body)
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func textResponse(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
		"usageMetadata": map[string]any{"promptTokenCount": 10, "candidatesTokenCount": 5},
	})
}

func newClient(t *testing.T, baseURL, apiKey string, retries int, timeout time.Duration) *gemini.Client {
	t.Helper()
	c, err := gemini.NewClient(context.Background(), gemini.Options{
		APIKey:     apiKey,
		Model:      "gemini-2.5-flash",
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Timeout:    timeout,
		Resilience: resilience.Config{MaxRetries: retries, InitialBackoff: 5 * time.Millisecond, MaxConcurrency: 4},
	}, resilience.NewCircuitBreaker("gemini-test"), observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestGenerateJSON_ReturnsCandidateText(t *testing.T) {
	srv, calls := fakeGemini(t, func(w http.ResponseWriter, body map[string]any) {
		cfg, _ := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		textResponse(w, `[{"id":"1"}]`)
	})
	c := newClient(t, srv.URL, "test-key", 0, 5*time.Second)

	out, err := c.GenerateJSON(context.Background(), "prompt", &genai.Schema{Type: genai.TypeArray})

	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, out)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestChat_SendsHistorySystemInstructionAndMessage(t *testing.T) {
	var got map[string]any
	srv, _ := fakeGemini(t, func(w http.ResponseWriter, body map[string]any) {
		got = body
		textResponse(w, "Bring your Aadhaar card.")
	})
	c := newClient(t, srv.URL, "test-key", 0, 5*time.Second)

	history := []domain.Turn{
		{Role: domain.RoleModel, Text: domain.ChatGreeting},
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleModel, Text: "hi"},
	}
	out, err := c.Chat(context.Background(), "You are SchemeXpert", history, "What documents do I need?")

	require.NoError(t, err)
	assert.Equal(t, "Bring your Aadhaar card.", out)

	contents, _ := got["contents"].([]any)
	require.Len(t, contents, 4, "history plus the new message")
	last := contents[3].(map[string]any)
	assert.Equal(t, "user", last["role"])
	sys, _ := got["systemInstruction"].(map[string]any)
	require.NotNil(t, sys)
}

func TestGenerate_RetriesTransientStatus(t *testing.T) {
	srv, calls := fakeGemini(t, func(w http.ResponseWriter, _ map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})
	c := newClient(t, srv.URL, "test-key", 2, 5*time.Second)

	_, err := c.GenerateJSON(context.Background(), "prompt", nil)

	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext), "got %v", err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(calls), int32(3))
}

func TestGenerate_DoesNotRetryBadRequest(t *testing.T) {
	srv, calls := fakeGemini(t, func(w http.ResponseWriter, _ map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})
	c := newClient(t, srv.URL, "bad-key", 3, 5*time.Second)

	_, err := c.Chat(context.Background(), "sys", nil, "hi")

	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestGenerate_TimesOut(t *testing.T) {
	srv, _ := fakeGemini(t, func(w http.ResponseWriter, _ map[string]any) {
		time.Sleep(300 * time.Millisecond)
		textResponse(w, "late")
	})
	c := newClient(t, srv.URL, "test-key", 0, 50*time.Millisecond)

	_, err := c.Chat(context.Background(), "sys", nil, "hi")

	var timeout *domain.ErrTimeout
	assert.True(t, errors.As(err, &timeout), "expected ErrTimeout, got %v", err)
}

func TestNewClient_MissingKeyIsDegraded(t *testing.T) {
	c := newClient(t, "", "", 0, time.Second)

	assert.False(t, c.Configured())
	_, err := c.GenerateJSON(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, gemini.IsTransient(genai.APIError{Code: 429}))
	assert.True(t, gemini.IsTransient(genai.APIError{Code: 500}))
	assert.False(t, gemini.IsTransient(genai.APIError{Code: 401}))
	assert.False(t, gemini.IsTransient(errors.New("unexpected end of JSON input")))
	assert.False(t, gemini.IsTransient(context.Canceled))
	assert.False(t, gemini.IsTransient(nil))
}
