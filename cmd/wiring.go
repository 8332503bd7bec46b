package main

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pdfprep/assistant"
	"pdfprep/completion"
	"pdfprep/config"
	"pdfprep/pkg/llm"
	processor "pdfprep/process"
	"pdfprep/relevance"
	"pdfprep/storage"
)

const retryBaseDelay = 500 * time.Millisecond

type app struct {
	cfg       *config.Config
	cache     *storage.BoltCompletionCache
	extractor *processor.Client
	selector  *relevance.KeywordSelector
	completer *completion.Client
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	cache := storage.NewBoltCompletionCache(cfg.CacheDBPath, cfg.CacheOpenTimeout)

	// No key, no provider: the completion client answers with the
	// missing-credential message instead.
	var provider llm.Provider
	if cfg.OpenAIAPIKey != "" {
		p, err := llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL,
			NewHttpClient(cfg.RequestTimeout), llm.Mode(cfg.OpenAIMode))
		if err != nil {
			return nil, fmt.Errorf("failed to create provider: %w", err)
		}
		provider = llm.NewRetryingProvider(p, cfg.MaxRetries, retryBaseDelay, logger)
	} else {
		logger.Warn("OPENAI_API_KEY is not set; questions will not be answered")
	}

	completer := completion.NewClient(completion.Config{
		APIKey:         cfg.OpenAIAPIKey,
		RequestTimeout: cfg.RequestTimeout,
	}, cache, provider, logger)

	return &app{
		cfg:       cfg,
		cache:     cache,
		extractor: processor.NewClient(processor.NewLedongthucExtractor(), logger),
		selector:  relevance.NewKeywordSelector(logger),
		completer: completer,
	}, nil
}

func (a *app) newSession() *assistant.Session {
	return assistant.NewSession(a.extractor, a.selector, a.completer, logger)
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApp(cfg, logger)
}

func NewHttpClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
