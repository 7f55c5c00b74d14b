package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/career-matcher/internal/db"
	"github.com/jonathan/career-matcher/internal/pipeline"
	"github.com/jonathan/career-matcher/internal/types"
)

// matchResponse is the success envelope for /match
type matchResponse struct {
	Success  bool                `json:"success"`
	Matches  []types.CareerMatch `json:"matches"`
	Metadata types.RunMetadata   `json:"metadata"`
}

// errorEnvelope is the failure envelope shared by every endpoint
type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// handleMatch runs the full pipeline synchronously and returns the matches
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.matcher.Run(r.Context(), &req, pipeline.RunOptions{TopK: s.topK})
	if err != nil {
		log.Printf("Match run failed: %v", err)
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, matchResponse{
		Success:  true,
		Matches:  result.Matches,
		Metadata: result.Metadata,
	})
}

// handleMatchStream runs the pipeline and streams progress via SSE
func (s *Server) handleMatchStream(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	// Setup SSE writer
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	log.Printf("Starting streaming match run...")

	opts := pipeline.RunOptions{
		TopK: s.topK,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent("progress", event); err != nil {
				log.Printf("Error writing SSE event: %v", err)
			}
		},
	}

	// Run pipeline synchronously (blocking until complete)
	result, err := s.matcher.Run(r.Context(), &req, opts)
	if err != nil {
		log.Printf("Match run failed: %v", err)
		code, _ := ClassifyError(err)
		sse.WriteError(code, err.Error())
		return
	}

	sse.WriteComplete(matchResponse{
		Success:  true,
		Matches:  result.Matches,
		Metadata: result.Metadata,
	})
	log.Printf("Streaming match run completed")
}

// handleHealth returns server health plus the loaded corpus identity
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"corpus_version": s.matcher.Corpus.Version(),
		"corpus_size":    s.matcher.Corpus.Len(),
	})
}

// requireDB writes a 503 when run history is requested without a database
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, CodeInternalError,
			"Run history requires a configured database")
		return false
	}
	return true
}

// handleListRuns returns recent runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, CodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns a single run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, CodeInvalidInput, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleRunMatches returns the persisted matches for a run, best rank first
func (s *Server) handleRunMatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	matches, err := s.db.GetRunMatches(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run_id":  runID.String(),
		"matches": matches,
	})
}

// handleDeleteRun removes a run and its persisted matches
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, CodeInvalidInput, "Run not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, CodeInternalError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"run_id": runID.String(),
		"status": "deleted",
	})
}

// parseRunID extracts and validates the {id} path parameter
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidInput, "Run ID is required")
		return uuid.Nil, false
	}

	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidInput, "Invalid run ID format")
		return uuid.Nil, false
	}

	return runID, true
}
