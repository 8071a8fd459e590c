package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func TestGroqClientComplete(t *testing.T) {
	var got groqChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse("print('hi')"))
	}))
	defer srv.Close()

	g := NewGroqClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0, 0))
	out, err := g.Complete(context.Background(), Request{System: "sys", User: "usr", Temperature: 0.5, MaxTokens: 4096})
	require.NoError(t, err)

	assert.Equal(t, "print('hi')", out)
	assert.Equal(t, DefaultGroqModels[0], got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.Equal(t, 0.5, got.Temperature)
	assert.Equal(t, 4096, got.MaxTokens)
}

func TestGroqClientFallsBackOnRateLimit(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req groqChatReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		models = append(models, req.Model)
		if req.Model == "big" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":"rate_limit_exceeded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse("x = 1"))
	}))
	defer srv.Close()

	g := NewGroqClient("k", WithBaseURL(srv.URL), WithModels("big", "small"), WithRateLimit(0, 0))
	out, err := g.Complete(context.Background(), Request{User: "u"})
	require.NoError(t, err)
	assert.Equal(t, "x = 1", out)
	assert.Equal(t, []string{"big", "small"}, models)
}

func TestGroqClientRateLimitedOnLastModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGroqClient("k", WithBaseURL(srv.URL), WithModels("only"), WithRateLimit(0, 0))
	_, err := g.Complete(context.Background(), Request{User: "u"})

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "only", rl.Model)

	var perm *PermanentError
	assert.False(t, errors.As(err, &perm), "rate limits stay retryable")
}

func TestGroqClientClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("context_length_exceeded"))
	}))
	defer srv.Close()

	g := NewGroqClient("k", WithBaseURL(srv.URL), WithRateLimit(0, 0))
	_, err := g.Complete(context.Background(), Request{User: "u"})

	var perm *PermanentError
	require.ErrorAs(t, err, &perm)
	assert.Contains(t, err.Error(), "context_length_exceeded")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no model fallback on a 400")
}

func TestGroqClientServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGroqClient("k", WithBaseURL(srv.URL), WithRateLimit(0, 0))
	_, err := g.Complete(context.Background(), Request{User: "u"})
	require.Error(t, err)

	var perm *PermanentError
	assert.False(t, errors.As(err, &perm))
}

func TestGroqClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	g := NewGroqClient("k", WithBaseURL(srv.URL), WithRateLimit(0, 0))
	_, err := g.Complete(context.Background(), Request{User: "u"})
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestGroqClientWithoutKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	g := NewGroqClient("")
	assert.False(t, g.Configured())

	_, err := g.Complete(context.Background(), Request{User: "u"})
	var perm *PermanentError
	assert.ErrorAs(t, err, &perm)
}

func TestGroqClientKeyFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "from-env")
	g := NewGroqClient("")
	assert.True(t, g.Configured())
	assert.Equal(t, "groq:"+DefaultGroqModels[0], g.Name())
}
