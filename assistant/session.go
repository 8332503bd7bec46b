// Package assistant sequences one user's interaction: a single processed
// document, and questions answered against it one at a time.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	processor "pdfprep/process"
	"pdfprep/relevance"
)

var (
	// ErrMissingInput is returned by Ask when there is no document or the
	// question is blank.
	ErrMissingInput = errors.New("please upload a PDF and enter a question")

	// ErrNoText is returned by LoadDocument when no page yielded text.
	ErrNoText = errors.New("no extractable text found in PDF")
)

const promptTemplate = "Based on the following text, answer this question: %s\n\n---\n\n%s"

// BuildPrompt fills the fixed prompt template.
func BuildPrompt(question, excerpt string) string {
	return fmt.Sprintf(promptTemplate, question, excerpt)
}

type Extractor interface {
	ExtractBytes(name string, data []byte) (*processor.ExtractionResult, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Document struct {
	Name string
	Text string
}

type Answer struct {
	Question string
	Excerpt  string
	Prompt   string
	Text     string
	// LowConfidence is set when no fragment of the document matched the question.
	LowConfidence bool
}

type Session struct {
	extractor Extractor
	selector  relevance.Selector
	completer Completer
	logger    *zap.Logger

	mu  sync.Mutex
	doc *Document
}

func NewSession(extractor Extractor, selector relevance.Selector, completer Completer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		extractor: extractor,
		selector:  selector,
		completer: completer,
		logger:    logger,
	}
}

// LoadDocument extracts data and makes it the session's document. The
// previous document is discarded whether or not extraction succeeds.
func (s *Session) LoadDocument(name string, data []byte) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = nil

	res, err := s.extractor.ExtractBytes(name, data)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		s.logger.Warn("document has no text", zap.String("file", name))
		return nil, ErrNoText
	}

	s.doc = &Document{Name: name, Text: res.Text}
	return s.doc, nil
}

// Document returns the current document, or nil.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Ask answers question against the current document. Only one question is
// answered at a time; concurrent callers wait.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil || strings.TrimSpace(question) == "" {
		return nil, ErrMissingInput
	}

	excerpt := s.selector.Select(s.doc.Text, question)
	prompt := BuildPrompt(question, excerpt)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("answered question",
		zap.String("file", s.doc.Name),
		zap.Int("excerpt_chars", len(excerpt)),
		zap.Int("answer_chars", len(text)))

	return &Answer{
		Question:      question,
		Excerpt:       excerpt,
		Prompt:        prompt,
		Text:          text,
		LowConfidence: excerpt == "",
	}, nil
}
