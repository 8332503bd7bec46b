package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentParseError is returned when a PDF cannot be opened or one of its
// pages cannot be read. No partial text accompanies it.
type DocumentParseError struct {
	Cause error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("failed to parse PDF: %v", e.Cause)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Cause
}

// LedongthucExtractor implements PDFExtractor using github.com/ledongthuc/pdf
type LedongthucExtractor struct{}

// NewLedongthucExtractor creates a new instance of LedongthucExtractor
func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

// ExtractFromFile extracts text from a PDF file path
func (e *LedongthucExtractor) ExtractFromFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat PDF file: %w", err)
	}

	return e.ExtractFromReader(f, info.Size())
}

// ExtractFromReader extracts the text of every page in order, skipping pages
// without text, and joins them with a single space.
func (e *LedongthucExtractor) ExtractFromReader(r io.ReaderAt, size int64) (text string, err error) {
	// the pdf package reports some structural errors by panicking
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = &DocumentParseError{Cause: fmt.Errorf("%v", p)}
		}
	}()

	pages, err := e.extractPages(r, size)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, " "), nil
}

// extractPages returns the trimmed, non-empty text of each page in order.
func (e *LedongthucExtractor) extractPages(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, &DocumentParseError{Cause: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &DocumentParseError{Cause: fmt.Errorf("page %d: %w", i, err)}
		}

		// GetPlainText opens every text block with a newline; a page whose
		// text is only layout whitespace counts as having no text.
		content = strings.TrimSpace(content)
		if content != "" {
			pages = append(pages, content)
		}
	}
	return pages, nil
}

var errNotPDF = errors.New("not a PDF file")

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
