package generate

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Middleware decorates a Completer with a cross-cutting concern.
type Middleware func(Completer) Completer

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Completer, mws ...Middleware) Completer {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Retry retries Complete up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Completer) Completer {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Completer
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Complete(ctx context.Context, req Request) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err

		if i == r.max-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}

// WithLogging logs each completion's outcome and latency.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Completer) Completer {
		return &logging{next: next, logger: logger.With("component", "completer", "provider", next.Name())}
	}
}

type logging struct {
	next   Completer
	logger *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.next.Complete(ctx, req)
	if err != nil {
		l.logger.Error("completion failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"prompt_length", len(req.User),
			"error", err)
		return "", err
	}
	l.logger.Info("completion finished",
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_length", len(req.User),
		"response_length", len(out))
	return out, nil
}
