// Package completion turns a prompt into an answer, going through the
// on-disk completion cache before the LLM provider.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"pdfprep/pkg/llm"
	"pdfprep/storage"
)

const (
	// Temperature and MaxTokens are fixed sampling parameters.
	Temperature = 0.5
	MaxTokens   = 800

	MissingCredentialMessage = "API key not found. Please check your .env file."
	UnexpectedFormatMessage  = "Unexpected response format."
)

// ErrCacheUnavailable wraps failures reading or writing the completion cache.
var ErrCacheUnavailable = errors.New("completion cache unavailable")

type Cache interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

type Config struct {
	APIKey         string
	RequestTimeout time.Duration
}

type Client struct {
	cfg      Config
	cache    Cache
	provider llm.Provider
	logger   *zap.Logger
}

// NewClient creates a completion client. provider may be nil when no API key
// is configured; it is never called in that case.
func NewClient(cfg Config, cache Cache, provider llm.Provider, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:      cfg,
		cache:    cache,
		provider: provider,
		logger:   logger,
	}
}

// Complete returns the completion for prompt. A missing credential or an
// unrecognized provider response yields a sentinel message, not an error.
// Provider and cache failures are returned as errors.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" || c.provider == nil {
		c.logger.Warn("no API key configured")
		return MissingCredentialMessage, nil
	}

	key := storage.HashPrompt(prompt)
	cached, ok, err := c.cache.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read: %w", ErrCacheUnavailable, err)
	}
	if ok {
		c.logger.Info("completion cache hit", zap.String("key", key))
		return cached, nil
	}
	c.logger.Info("completion cache miss", zap.String("key", key), zap.Int("prompt_chars", len(prompt)))

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, prompt, llm.Options{
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get completion: %w", err)
	}

	text, ok := normalize(resp)
	if !ok {
		c.logger.Warn("unexpected provider response", zap.String("key", key), zap.Stringer("kind", kindOf(resp)))
		return UnexpectedFormatMessage, nil
	}
	c.logger.Info("completion received",
		zap.String("key", key),
		zap.Duration("took", time.Since(start)),
		zap.Int("chars", len(text)))

	if err := c.cache.Put(key, text); err != nil {
		return "", fmt.Errorf("%w: failed to write: %w", ErrCacheUnavailable, err)
	}
	return text, nil
}

// normalize extracts the generated text from either response shape.
func normalize(resp *llm.Response) (string, bool) {
	if resp == nil {
		return "", false
	}
	switch resp.Kind {
	case llm.KindChoices:
		if len(resp.Choices) == 0 {
			return "", false
		}
		return strings.TrimSpace(resp.Choices[0].Text), true
	case llm.KindText:
		return strings.TrimSpace(resp.Text), true
	default:
		return "", false
	}
}

func kindOf(resp *llm.Response) llm.ResponseKind {
	if resp == nil {
		return llm.KindUnknown
	}
	return resp.Kind
}
