package processor

import (
	"bytes"
	"io"

	"go.uber.org/zap"
)

// PDFExtractor defines the interface for PDF text extraction
type PDFExtractor interface {
	// ExtractFromFile extracts text from a PDF file path
	ExtractFromFile(filePath string) (string, error)

	// ExtractFromReader extracts text from random-access PDF data
	ExtractFromReader(r io.ReaderAt, size int64) (string, error)
}

type ExtractionResult struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

// Empty reports whether no page of the document yielded text.
func (r *ExtractionResult) Empty() bool {
	return r.Text == ""
}

// Client wraps the PDFExtractor interface for easy swapping of implementations
type Client struct {
	extractor PDFExtractor
	logger    *zap.Logger
}

// NewClient creates a new PDF processor client with the given extractor implementation
func NewClient(extractor PDFExtractor, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		extractor: extractor,
		logger:    logger,
	}
}

// ExtractTextFromFile extracts text from a PDF file
func (c *Client) ExtractTextFromFile(filePath string) (*ExtractionResult, error) {
	text, err := c.extractor.ExtractFromFile(filePath)
	return c.result(filePath, text, err)
}

// ExtractBytes extracts text from an uploaded PDF held in memory.
func (c *Client) ExtractBytes(name string, data []byte) (*ExtractionResult, error) {
	if !ValidatePDF(data) {
		err := &DocumentParseError{Cause: errNotPDF}
		c.logger.Warn("rejected upload", zap.String("file", name), zap.Int("bytes", len(data)), zap.Error(err))
		return nil, err
	}

	text, err := c.extractor.ExtractFromReader(bytes.NewReader(data), int64(len(data)))
	return c.result(name, text, err)
}

func (c *Client) result(name, text string, err error) (*ExtractionResult, error) {
	if err != nil {
		c.logger.Error("failed to extract PDF text", zap.String("file", name), zap.Error(err))
		return nil, err
	}

	res := &ExtractionResult{Name: name, Text: text, Chars: len(text)}
	c.logger.Info("extracted PDF text",
		zap.String("file", name),
		zap.Int("chars", res.Chars),
		zap.Bool("empty", res.Empty()))
	return res, nil
}
