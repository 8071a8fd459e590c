// Package generate talks to code-generation services.
//
// A Completer performs one chat completion against a provider (Groq, Gemini).
// Client turns a Completer into a Generator: it owns the system prompts, the
// improvement prompt and the clean-up of model output. Cross-cutting concerns
// such as retries and logging are layered on with Middleware.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyOutput is returned when a provider answers with no usable code.
var ErrEmptyOutput = errors.New("generator returned no code")

// PermanentError marks a failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError wraps err as non-retryable.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Request is a single chat completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer performs chat completions against one provider.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Generator synthesizes and rewrites code.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Rewrite(ctx context.Context, code string, recommendations []string, prompt string) (string, error)
}

const (
	generateTemperature = 0.7
	rewriteTemperature  = 0.5
	defaultMaxTokens    = 4096
)

// Client implements Generator on top of a Completer.
type Client struct {
	completer Completer
	language  string
	maxTokens int
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLanguage sets the target language for generated code.
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient wraps a completer.
func NewClient(completer Completer, opts ...ClientOption) *Client {
	c := &Client{
		completer: completer,
		language:  "python",
		maxTokens: defaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "generator", "provider", completer.Name())
	return c
}

// Name returns the underlying provider name.
func (c *Client) Name() string { return c.completer.Name() }

// Generate synthesizes code from a natural-language prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "generate", Request{
		System:      generateSystemPrompt(c.language),
		User:        prompt,
		Temperature: generateTemperature,
		MaxTokens:   c.maxTokens,
	})
}

// Rewrite asks for an improved version of code that applies recommendations.
func (c *Client) Rewrite(ctx context.Context, code string, recommendations []string, prompt string) (string, error) {
	return c.complete(ctx, "rewrite", Request{
		System:      rewriteSystemPrompt(c.language),
		User:        BuildRewritePrompt(prompt, code, recommendations, c.language),
		Temperature: rewriteTemperature,
		MaxTokens:   c.maxTokens,
	})
}

func (c *Client) complete(ctx context.Context, op string, req Request) (string, error) {
	out, err := c.completer.Complete(ctx, req)
	if err != nil {
		c.logger.Warn("completion failed", "operation", op, "error", err)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	code := ExtractCode(out, c.language)
	if code == "" {
		c.logger.Warn("completion contained no code", "operation", op, "response_length", len(out))
		return "", fmt.Errorf("%s: %w", op, ErrEmptyOutput)
	}

	c.logger.Debug("completion succeeded", "operation", op, "code_length", len(code))
	return code, nil
}
