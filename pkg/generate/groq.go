package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const groqBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// DefaultGroqModels are tried in order; a rate-limited model falls through
// to the next one.
var DefaultGroqModels = []string{"llama-3.3-70b-versatile", "llama3-8b-8192"}

// RateLimitError reports an HTTP 429 from the provider.
type RateLimitError struct {
	Model string
	Body  string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("groq: rate limited on %s: %s", e.Model, e.Body)
}

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http    *http.Client
	apiKey  string
	models  []string
	baseURL string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// GroqOption configures a GroqClient.
type GroqOption func(*GroqClient)

// WithModels overrides the model fallback chain.
func WithModels(models ...string) GroqOption {
	return func(g *GroqClient) {
		if len(models) > 0 {
			g.models = models
		}
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(url string) GroqOption {
	return func(g *GroqClient) {
		if url != "" {
			g.baseURL = url
		}
	}
}

// WithHTTPTimeout bounds each HTTP request.
func WithHTTPTimeout(timeout time.Duration) GroqOption {
	return func(g *GroqClient) {
		if timeout > 0 {
			g.http = &http.Client{Timeout: timeout, Transport: g.http.Transport}
		}
	}
}

// WithRateLimit caps outgoing requests per minute. Zero disables limiting.
func WithRateLimit(requestsPerMinute, burst int) GroqOption {
	return func(g *GroqClient) {
		if requestsPerMinute <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// WithGroqLogger sets the logger.
func WithGroqLogger(logger *slog.Logger) GroqOption {
	return func(g *GroqClient) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGroqClient creates a Groq client. If apiKey is empty, it falls back to
// the GROQ_API_KEY env var.
func NewGroqClient(apiKey string, opts ...GroqOption) *GroqClient {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	g := &GroqClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		apiKey:  apiKey,
		models:  DefaultGroqModels,
		baseURL: groqBaseURL,
		limiter: rate.NewLimiter(rate.Limit(30.0/60.0), 2),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "groq_client")
	return g
}

func (g *GroqClient) Name() string { return "groq:" + g.models[0] }

// Configured reports whether an API key is available.
func (g *GroqClient) Configured() bool { return g.apiKey != "" }

type groqChatReq struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Completer, walking the model chain on rate limits.
func (g *GroqClient) Complete(ctx context.Context, req Request) (string, error) {
	if !g.Configured() {
		return "", NewPermanentError(errors.New("groq: api key not configured"))
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	var lastErr error
	for i, model := range g.models {
		start := time.Now()
		out, err := g.call(ctx, model, req)
		if err == nil {
			g.logger.Debug("completion succeeded",
				"model", model,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_length", len(out))
			return out, nil
		}

		var rl *RateLimitError
		if errors.As(err, &rl) && i < len(g.models)-1 {
			g.logger.Warn("rate limit hit, trying next model", "model", model, "next_model", g.models[i+1])
			lastErr = err
			continue
		}
		return "", err
	}
	return "", lastErr
}

func (g *GroqClient) call(ctx context.Context, model string, req Request) (string, error) {
	body := groqChatReq{
		Model: model,
		Messages: []groqMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(raw))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", &RateLimitError{Model: model, Body: msg}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return "", NewPermanentError(fmt.Errorf("groq: unexpected status %s: %s", resp.Status, msg))
		default:
			return "", fmt.Errorf("groq: unexpected status %s: %s", resp.Status, msg)
		}
	}

	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyOutput
	}
	return out.Choices[0].Message.Content, nil
}
