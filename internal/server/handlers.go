package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/store"
	"github.com/jonathan/outline-ranker/internal/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AnalyzeRequest selects a collection directory on the server and optionally
// overrides the persona and task recorded in its input file.
type AnalyzeRequest struct {
	CollectionDir string `json:"collection_dir" validate:"required"`
	Persona       string `json:"persona,omitempty"`
	Task          string `json:"task,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOutline extracts the outline of an uploaded PDF
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	if int64(len(data)) > maxBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d MB)", s.cfg.MaxUploadMB))
		return
	}

	name := filepath.Base(header.Filename)
	doc, err := s.extractor.ExtractReader(r.Context(), name, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.log.Warn("unreadable upload", "document", name, "error", err)
		s.writeError(w, err)
		return
	}

	outline := s.pipeline.OutlineFromDocument(doc)
	if runID, ok := s.recordOutline(r.Context(), name, outline); ok {
		w.Header().Set("X-Run-ID", runID.String())
	}
	s.jsonResponse(w, http.StatusOK, outline)
}

// handleAnalyze ranks the sections of a collection stored on the server
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(w, &ErrValidation{Field: "collection_dir", Message: "is required"})
		return
	}

	dir, err := resolveCollectionDir(s.cfg.CollectionsRoot, req.CollectionDir)
	if err != nil {
		s.writeError(w, err)
		return
	}

	inputPath := filepath.Join(dir, s.cfg.InputName)
	input, err := pipeline.LoadCollectionInput(inputPath, s.cfg.PDFDir)
	if err != nil {
		s.writeError(w, &ErrNotFound{Resource: "collection input", ID: inputPath})
		return
	}
	if req.Persona != "" {
		input.Persona.Role = req.Persona
	}
	if req.Task != "" {
		input.JobToBeDone.Task = req.Task
	}

	result, err := s.pipeline.AnalyzeCollection(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if runID, ok := s.recordAnalysis(r.Context(), input, result); ok {
		w.Header().Set("X-Run-ID", runID.String())
	}
	s.jsonResponse(w, http.StatusOK, result.Output)
}

// resolveCollectionDir resolves dir against root and rejects anything that
// lands outside root, including through symlinks.
func resolveCollectionDir(root, dir string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve collections root: %w", err)
	}
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, target)
	}
	target = filepath.Clean(target)

	if !within(rootAbs, target) {
		return "", &ErrValidation{Field: "collection_dir", Message: "must be inside the collections root"}
	}
	if realRoot, err := filepath.EvalSymlinks(rootAbs); err == nil {
		if realTarget, err := filepath.EvalSymlinks(target); err == nil && !within(realRoot, realTarget) {
			return "", &ErrValidation{Field: "collection_dir", Message: "must be inside the collections root"}
		}
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// handleSearchSections searches the section index
func (s *Server) handleSearchSections(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, &ErrUnavailable{Feature: "section search"})
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, &ErrValidation{Field: "q", Message: "is required"})
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	hits, err := s.db.SearchSections(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if hits == nil {
		hits = []store.SectionHit{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"query": query, "sections": hits})
}

// handleListRuns lists recent runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, &ErrUnavailable{Feature: "run history"})
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	runs, err := s.db.ListRunsFiltered(r.Context(), store.RunFilters{
		Kind:   r.URL.Query().Get("kind"),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, &ErrUnavailable{Feature: "run history"})
		return
	}
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if run == nil {
		s.writeError(w, &ErrNotFound{Resource: "run", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// recordOutline stores an outline run when a store is configured. Storage
// failures are logged and never fail the request.
func (s *Server) recordOutline(ctx context.Context, document string, outline *types.Outline) (uuid.UUID, bool) {
	if s.db == nil {
		return uuid.Nil, false
	}
	runID, err := s.db.CreateRun(ctx, store.KindOutline, "", "")
	if err == nil {
		err = s.db.SaveOutline(ctx, runID, document, outline)
	}
	return s.finishRun(ctx, runID, err)
}

func (s *Server) recordAnalysis(ctx context.Context, input *types.CollectionInput, result *pipeline.CollectionResult) (uuid.UUID, bool) {
	if s.db == nil {
		return uuid.Nil, false
	}
	runID, err := s.db.CreateRun(ctx, store.KindAnalyze, input.Persona.Role, input.JobToBeDone.Task)
	if err == nil {
		err = s.db.SaveSections(ctx, runID, result.RankedSections())
	}
	return s.finishRun(ctx, runID, err)
}

func (s *Server) finishRun(ctx context.Context, runID uuid.UUID, err error) (uuid.UUID, bool) {
	if runID == uuid.Nil {
		s.log.Warn("failed to record run", "error", err)
		return uuid.Nil, false
	}
	status := store.StatusCompleted
	if err != nil {
		s.log.Warn("failed to record run", "run_id", runID, "error", err)
		status = store.StatusFailed
	}
	if cerr := s.db.CompleteRun(ctx, runID, status); cerr != nil {
		s.log.Warn("failed to complete run", "run_id", runID, "error", cerr)
	}
	return runID, err == nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, &ErrValidation{Field: "limit", Message: "must be a positive integer"}
	}
	return min(limit, maxListLimit), nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code and writes it as JSON
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.errorResponse(w, status, err.Error())
}
