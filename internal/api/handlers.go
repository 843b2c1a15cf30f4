package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/auth"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/engine"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/extract"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

var errBodyTooLarge = errors.New("request body too large")

// ---------------------------------------------------------------------------
// POST /register
// ---------------------------------------------------------------------------

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// ---------------------------------------------------------------------------
// POST / (login)
// ---------------------------------------------------------------------------

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	token, user, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "username": user.Username})
}

// ---------------------------------------------------------------------------
// POST /upload
// ---------------------------------------------------------------------------

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.fail(w, r, errBodyTooLarge)
			return
		}
		s.fail(w, r, &model.InvalidInputError{Reason: "No file uploaded"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, &model.InvalidInputError{Reason: "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Size > s.opts.MaxUploadBytes {
		s.fail(w, r, errBodyTooLarge)
		return
	}

	mediaType := extract.ResolveMediaType(header.Header.Get("Content-Type"), header.Filename)
	a, err := s.pipeline.Submit(r.Context(), owner, engine.Input{Blob: file, MediaType: mediaType})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": a.OriginalText, "id": a.ID})
}

// ---------------------------------------------------------------------------
// POST /summarize
// ---------------------------------------------------------------------------

type summarizeRequest struct {
	Inputs string `json:"inputs"`
	ID     string `json:"id"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	var req summarizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	a, err := s.pipeline.RunSummarize(r.Context(), owner, engine.SummarizeRequest{ArtifactID: req.ID, Text: req.Inputs})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summarizedText": a.SummaryText(), "id": a.ID})
}

// ---------------------------------------------------------------------------
// POST /translate
// ---------------------------------------------------------------------------

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
	ID     string `json:"id"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	ID             string `json:"id,omitempty"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !model.IsSupportedLanguage(req.Target) {
		s.fail(w, r, &model.InvalidInputError{Reason: fmt.Sprintf("unrecognized target language %q", req.Target)})
		return
	}
	if req.Source != "" && req.Source != model.DefaultSourceLanguage && !model.IsSupportedLanguage(req.Source) {
		s.fail(w, r, &model.InvalidInputError{Reason: fmt.Sprintf("unrecognized source language %q", req.Source)})
		return
	}

	a, translation, err := s.pipeline.RunTranslate(r.Context(), owner, engine.TranslateRequest{
		ArtifactID: req.ID,
		Text:       req.Text,
		Source:     req.Source,
		Target:     req.Target,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := translateResponse{TranslatedText: translation}
	if a != nil {
		resp.ID = a.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// GET /summaries
// ---------------------------------------------------------------------------

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, &model.InvalidInputError{Reason: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	artifacts, err := s.pipeline.History(r.Context(), owner, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if artifacts == nil {
		artifacts = []model.Artifact{}
	}
	writeJSON(w, http.StatusOK, artifacts)
}

// ---------------------------------------------------------------------------
// GET /summaries/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	a, err := s.pipeline.Replay(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ---------------------------------------------------------------------------
// DELETE /summaries
// ---------------------------------------------------------------------------

func (s *Server) handleClearSummaries(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		s.fail(w, r, model.ErrUnauthorized)
		return
	}

	n, err := s.pipeline.ClearHistory(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "History cleared successfully",
		"deleted": n,
	})
}

// ---------------------------------------------------------------------------
// GET /healthz
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// decodeJSON reads a JSON body of at most maxRequestBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errBodyTooLarge
		}
		return &model.InvalidInputError{Reason: "invalid JSON body"}
	}
	return nil
}

// statusForError maps an error to its HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, model.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.Is(err, model.ErrDuplicate):
		return http.StatusBadRequest, "duplicate"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, model.ErrExtraction):
		return http.StatusInternalServerError, "extraction_failed"
	case errors.Is(err, model.ErrEnrichmentUnavailable):
		return http.StatusInternalServerError, "enrichment_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// stepNamer is implemented by errors that carry a pipeline stage name.
type stepNamer interface {
	StepName() string
}

// publicMessages replaces internal error text on 5xx responses.
var publicMessages = map[string]string{
	"extraction_failed":      "Error processing file",
	"enrichment_unavailable": "The summarization service is unavailable",
	"internal":               "Internal server error",
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err),
		}
		var sn stepNamer
		if errors.As(err, &sn) {
			fields = append(fields, zap.String("stage", sn.StepName()))
		}
		s.logger.Error("request failed", fields...)
		msg = publicMessages[code]
	}
	switch {
	case errors.Is(err, model.ErrDuplicate):
		msg = "username or email is already registered"
	case errors.Is(err, model.ErrUnauthorized):
		msg = "Invalid credentials"
	}
	writeError(w, status, code, msg)
}
