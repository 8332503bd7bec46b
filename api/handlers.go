package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"pdfprep/assistant"
)

type pageData struct {
	Document      *assistant.Document
	Question      string
	Answer        string
	Error         string
	LowConfidence bool
}

// DocumentResponse is returned after a successful upload.
type DocumentResponse struct {
	Name  string `json:"name"`
	Chars int    `json:"chars"`
}

// AskRequest represents a question against the session's document
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the answer and the excerpt it was grounded on
type AskResponse struct {
	Answer        string `json:"answer"`
	Excerpt       string `json:"excerpt"`
	LowConfidence bool   `json:"low_confidence"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.sessionFor(w, r)
	s.render(w, http.StatusOK, pageData{Document: sess.Document()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.sessionFor(w, r)

	doc, err := s.loadUpload(w, r, sess)
	if err != nil {
		apiErr := classify(err)
		s.render(w, apiErr.Status, pageData{Document: sess.Document(), Error: apiErr.Message})
		return
	}
	s.render(w, http.StatusOK, pageData{Document: doc})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.sessionFor(w, r)
	question := r.FormValue("question")

	ans, err := sess.Ask(r.Context(), question)
	if err != nil {
		apiErr := s.askError(err)
		s.render(w, apiErr.Status, pageData{Document: sess.Document(), Question: question, Error: apiErr.Message})
		return
	}

	s.render(w, http.StatusOK, pageData{
		Document:      sess.Document(),
		Question:      question,
		Answer:        ans.Text,
		LowConfidence: ans.LowConfidence,
	})
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.sessionFor(w, r)

	doc, err := s.loadUpload(w, r, sess)
	if err != nil {
		writeError(w, classify(err))
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Name: doc.Name, Chars: len(doc.Text)})
}

func (s *Server) handleAPIAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.sessionFor(w, r)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, newAPIError(http.StatusBadRequest, "INVALID_JSON", "invalid request body", err))
		return
	}

	ans, err := sess.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, s.askError(err))
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{
		Answer:        ans.Text,
		Excerpt:       ans.Excerpt,
		LowConfidence: ans.LowConfidence,
	})
}

// loadUpload reads the multipart "file" field and loads it into sess.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request, sess *assistant.Session) (*assistant.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, newAPIError(http.StatusBadRequest, "INVALID_UPLOAD", "expected a multipart form with a file field", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, assistant.ErrMissingInput
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, "INVALID_UPLOAD", "failed to read uploaded file", err)
	}

	return sess.LoadDocument(header.Filename, data)
}

func (s *Server) askError(err error) *APIError {
	apiErr := classify(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("failed to answer question", zap.Error(err))
	}
	return apiErr
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, apiErr *APIError) {
	writeJSON(w, apiErr.Status, apiErr)
}
