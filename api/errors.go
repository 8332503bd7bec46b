package api

import (
	"errors"
	"fmt"
	"net/http"

	"pdfprep/assistant"
	"pdfprep/completion"
	processor "pdfprep/process"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAPIError(status int, code, message string, cause error) *APIError {
	err := &APIError{Status: status, Code: code, Message: message}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// classify maps pipeline errors to what the user is shown.
func classify(err error) *APIError {
	var apiErr *APIError
	var parseErr *processor.DocumentParseError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &tooLarge):
		return newAPIError(http.StatusRequestEntityTooLarge, "TOO_LARGE", "uploaded file is too large", err)
	case errors.As(err, &parseErr):
		return newAPIError(http.StatusUnprocessableEntity, "PARSE_ERROR", "Failed to process PDF", parseErr.Cause)
	case errors.Is(err, assistant.ErrNoText):
		return newAPIError(http.StatusUnprocessableEntity, "NO_TEXT", "No text could be extracted from this PDF", nil)
	case errors.Is(err, assistant.ErrMissingInput):
		return newAPIError(http.StatusBadRequest, "MISSING_INPUT", "Please upload a PDF and enter a question.", nil)
	case errors.Is(err, completion.ErrCacheUnavailable):
		return newAPIError(http.StatusInternalServerError, "CACHE_UNAVAILABLE", "The answer cache is unavailable, try again shortly", err)
	default:
		return newAPIError(http.StatusBadGateway, "COMPLETION_FAILED", "Failed to get an answer", err)
	}
}
