package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/ingestion"
	"github.com/recruitech/matchengine/internal/types"
)

// handleMatch runs the full pipeline for one (vacancy, candidate) pair and
// returns the report synchronously.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req ingestion.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	doc, err := s.pipeline.Run(r.Context(), &req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("match failed",
				zap.String("vacancy_id", req.Vacancy.ID),
				zap.String("candidate_id", req.Candidate.ID),
				zap.Error(err),
			)
			// Internal detail stays out of the response body.
			s.errorResponse(w, status, http.StatusText(status))
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps pipeline errors onto HTTP status codes. Input problems are
// the caller's fault, capability outages are retryable, everything else is
// internal.
func statusFor(err error) int {
	var (
		inputErr    *types.InputError
		unavailable *types.ExtractionUnavailable
	)
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
