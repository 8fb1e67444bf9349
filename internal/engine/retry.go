package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryConfig controls Retrying.
type RetryConfig struct {
	// Retries is the number of extra attempts after the first.
	Retries int
	// Delay is the base delay between attempts; it backs off
	// exponentially.
	Delay time.Duration
	// AttemptTimeout bounds each attempt. 0 means no per-attempt bound.
	AttemptTimeout time.Duration
	Logger         *slog.Logger
}

// Retrying re-runs failed recognitions. Each attempt gets its own timeout,
// so a hung engine costs at most AttemptTimeout per try.
type Retrying struct {
	Engine
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry wraps e.
func WithRetry(e Engine, cfg RetryConfig) *Retrying {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 500 * time.Millisecond
	}
	return &Retrying{Engine: e, cfg: cfg, logger: logger}
}

// Recognize delegates, retrying on engine failure or attempt timeout. The
// caller's own cancellation is never retried.
func (r *Retrying) Recognize(ctx context.Context, image []byte, lang string, s Settings) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			attemptCtx, cancel := r.attemptContext(ctx)
			defer cancel()

			out, err := r.Engine.Recognize(attemptCtx, image, lang, s)
			if err != nil {
				if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("%w: attempt timed out after %s", ErrRecognition, r.cfg.AttemptTimeout)
				}
				return err
			}
			text = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.cfg.Retries+1)),
		retry.Delay(r.cfg.Delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying recognition", "engine", r.Engine.Name(), "attempt", n+1, "error", err)
		}),
	)
	return text, err
}

func (r *Retrying) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.AttemptTimeout)
}
