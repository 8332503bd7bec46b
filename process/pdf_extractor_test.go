package processor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pdfprep/testutil"
)

func extract(t *testing.T, data []byte) (string, error) {
	t.Helper()
	return NewLedongthucExtractor().ExtractFromReader(bytes.NewReader(data), int64(len(data)))
}

func TestLedongthucExtractor_Pages(t *testing.T) {
	testCases := []struct {
		name     string
		pages    []string
		expected string
	}{
		{"SinglePage", []string{"Hello world."}, "Hello world."},
		{"PagesJoinedInOrder", []string{"First page.", "Second page.", "Third page."}, "First page. Second page. Third page."},
		{"ImagePagesSkipped", []string{"", "Only text.", ""}, "Only text."},
		{"NoTextAtAll", []string{"", ""}, ""},
		{"WhitespacePageSkipped", []string{"A cat sat.", "   ", "Fish swim."}, "A cat sat. Fish swim."},
		{"OnlyWhitespace", []string{"   "}, ""},
		{"EscapedParens", []string{"f(x) = 1"}, "f(x) = 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := extract(t, testutil.BuildPDF(tc.pages...))
			require.NoError(t, err)
			require.Equal(t, tc.expected, text)
		})
	}
}

func TestLedongthucExtractor_Corrupt(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"NotAPDF", []byte("just some bytes that are long enough to not be a pdf at all, really")},
		{"MissingTrailer", []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n")},
		{"TruncatedBody", testutil.BuildPDF("Hello")[:40]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := extract(t, tc.data)
			require.Empty(t, text)

			var parseErr *DocumentParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			require.NotNil(t, parseErr.Unwrap())
		})
	}
}

func TestLedongthucExtractor_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, testutil.BuildPDF("From disk."), 0o600))

	text, err := NewLedongthucExtractor().ExtractFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "From disk.", text)

	_, err = NewLedongthucExtractor().ExtractFromFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}

func TestClient_ExtractBytes(t *testing.T) {
	c := NewClient(NewLedongthucExtractor(), nil)

	res, err := c.ExtractBytes("a.pdf", testutil.BuildPDF("A cat sat.", "A dog ran."))
	require.NoError(t, err)
	require.Equal(t, "A cat sat. A dog ran.", res.Text)
	require.Equal(t, len(res.Text), res.Chars)
	require.False(t, res.Empty())

	res, err = c.ExtractBytes("blank.pdf", testutil.BuildPDF(""))
	require.NoError(t, err)
	require.True(t, res.Empty())

	_, err = c.ExtractBytes("notes.txt", []byte("plain text"))
	var parseErr *DocumentParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestValidatePDF(t *testing.T) {
	require.True(t, ValidatePDF([]byte("%PDF-1.7\n")))
	require.False(t, ValidatePDF([]byte("%PD")))
	require.False(t, ValidatePDF([]byte("<html>")))
}
