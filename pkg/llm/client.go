package llm

import "context"

// ResponseKind tags which shape a provider returned.
type ResponseKind int

const (
	KindUnknown ResponseKind = iota
	// KindChoices carries a list of generated choices; the first one is the answer.
	KindChoices
	// KindText carries a single bare string.
	KindText
)

func (k ResponseKind) String() string {
	switch k {
	case KindChoices:
		return "choices"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

type Choice struct {
	Text       string
	StopReason string
}

// Response is the provider result decoded at the boundary. Only the field
// matching Kind is meaningful.
type Response struct {
	Kind    ResponseKind
	Choices []Choice
	Text    string
}

// ChoicesResponse builds a KindChoices response from generated texts.
func ChoicesResponse(texts ...string) *Response {
	choices := make([]Choice, len(texts))
	for i, t := range texts {
		choices[i] = Choice{Text: t}
	}
	return &Response{Kind: KindChoices, Choices: choices}
}

// TextResponse builds a KindText response.
func TextResponse(text string) *Response {
	return &Response{Kind: KindText, Text: text}
}

type Options struct {
	Temperature float64
	MaxTokens   int
}

type Provider interface {
	Complete(ctx context.Context, prompt string, opts Options) (*Response, error)
}
