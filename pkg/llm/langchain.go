package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type Mode string

const (
	// ModeChat asks the model for content choices.
	ModeChat Mode = "chat"
	// ModeText asks the model for a single completion string.
	ModeText Mode = "text"
)

// LangchainProvider adapts a langchaingo model to Provider.
type LangchainProvider struct {
	model llms.Model
	mode  Mode
}

func NewLangchainProvider(model llms.Model, mode Mode) *LangchainProvider {
	if mode == "" {
		mode = ModeChat
	}
	return &LangchainProvider{
		model: model,
		mode:  mode,
	}
}

// NewOpenAIProvider builds a provider for the OpenAI API. An empty baseURL
// keeps the library default.
func NewOpenAIProvider(apiKey, model, baseURL string, httpClient *http.Client, mode Mode) (*LangchainProvider, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, openai.WithHTTPClient(httpClient))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLangchainProvider(m, mode), nil
}

func (p *LangchainProvider) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	callOpts := []llms.CallOption{
		llms.WithTemperature(opts.Temperature),
		llms.WithMaxTokens(opts.MaxTokens),
	}

	if p.mode == ModeText {
		text, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt, callOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to generate completion: %w", err)
		}
		return TextResponse(text), nil
	}

	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}
	resp, err := p.model.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return decodeContent(resp), nil
}

// decodeContent maps a langchaingo response onto Response. A nil response
// or nil choice decodes as KindUnknown.
func decodeContent(resp *llms.ContentResponse) *Response {
	if resp == nil {
		return &Response{Kind: KindUnknown}
	}

	out := &Response{Kind: KindChoices, Choices: make([]Choice, 0, len(resp.Choices))}
	for _, c := range resp.Choices {
		if c == nil {
			return &Response{Kind: KindUnknown}
		}
		out.Choices = append(out.Choices, Choice{Text: c.Content, StopReason: c.StopReason})
	}
	return out
}
