package llm

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryingProvider retries failed provider calls with exponential backoff.
// With maxRetries 0 it makes exactly one attempt.
type RetryingProvider struct {
	next       Provider
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func NewRetryingProvider(next Provider, maxRetries int, baseDelay time.Duration, logger *zap.Logger) *RetryingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingProvider{
		next:       next,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (r *RetryingProvider) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := r.next.Complete(ctx, prompt, opts)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Don't wait after the last attempt
		if attempt < r.maxRetries {
			delay := r.calculateBackoffDelay(attempt)
			r.logger.Warn("completion failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

func (r *RetryingProvider) calculateBackoffDelay(attempt int) time.Duration {
	return backoffDelay(r.baseDelay, attempt, float64(time.Now().UnixNano()%1000)/1000)
}

// backoffDelay is baseDelay * 2^attempt, moved by up to 25% either way.
// frac in [0, 1) picks the point: 0 gives +25%, values near 1 give -25%.
func backoffDelay(baseDelay time.Duration, attempt int, frac float64) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	jitter := delay * 0.5 * (0.5 - frac)
	return time.Duration(delay + jitter)
}
