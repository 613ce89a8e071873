// Package http implements the REST API for the Lingua Learning Hub.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lingua-hub/lingua-learning-hub/internal/application/command"
	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/logger"
)

// maxBodySize bounds the request body for write endpoints.
const maxBodySize = 64 << 10 // 64 KB

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Lingua Learning Hub API",
		"version":     "v1",
		"description": "Progress and learning-streak tracking for language learners",
		"endpoints": map[string]string{
			"health":   "/health",
			"progress": "/api/v1/progress",
			"stats":    "/api/v1/progress/stats",
			"streak":   "/api/v1/progress/streak",
			"calendar": "/api/v1/progress/calendar",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// saveProgressRequest is the body of POST /api/v1/progress.
type saveProgressRequest struct {
	LessonID       string `json:"lesson_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

// saveProgressResponse is the body of a successful save.
type saveProgressResponse struct {
	Record    query.ProgressDTO `json:"record"`
	Day       string            `json:"day"`
	Completed bool              `json:"completed"`
}

// handleSaveProgress handles POST /api/v1/progress
func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	var req saveProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.SaveProgressCommand{
		UserID:         userID,
		LessonID:       req.LessonID,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
	}

	result, err := s.deps.SaveProgressHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to save progress")
		return
	}

	writeJSON(w, http.StatusOK, saveProgressResponse{
		Record:    toRecordDTO(result),
		Day:       result.Day.String(),
		Completed: result.Completed,
	})
}

// toRecordDTO converts a save result into the read-side record shape.
func toRecordDTO(result *command.SaveProgressResult) query.ProgressDTO {
	r := result.Record
	return query.ProgressDTO{
		UserID:          r.UserID.String(),
		LessonID:        r.LessonID.String(),
		TotalAttempts:   r.TotalAttempts,
		CompletionCount: r.CompletionCount,
		LastScore:       r.LastScore,
		BestScore:       r.BestScore,
		TotalQuestions:  r.TotalQuestions,
		Completed:       r.IsCompleted(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// handleDeleteProgress handles DELETE /api/v1/progress/lessons/{id}
func (s *Server) handleDeleteProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	lessonID := r.PathValue("id")
	if lessonID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Lesson ID is required")
		return
	}

	result, err := s.deps.DeleteProgressHandler.Handle(r.Context(), command.DeleteProgressCommand{
		UserID:   userID,
		LessonID: lessonID,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to delete progress")
		return
	}

	if !result.Deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "No progress recorded for this lesson")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lesson_id": lessonID,
		"deleted":   true,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLessonProgress handles GET /api/v1/progress/lessons/{id}
func (s *Server) handleGetLessonProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	lessonID := r.PathValue("id")
	if lessonID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Lesson ID is required")
		return
	}

	dto, err := s.deps.GetProgressHandler.HandleOne(r.Context(), query.GetLessonProgressQuery{
		UserID:   userID,
		LessonID: lessonID,
	})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to get lesson progress")
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// listProgressResponse is the body of GET /api/v1/progress: every record
// of the user plus their aggregate summary, in one round trip.
type listProgressResponse struct {
	Records []query.ProgressDTO `json:"records"`
	Stats   *query.StatsDTO     `json:"stats"`
}

// handleListProgress handles GET /api/v1/progress
func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	records, err := s.deps.GetProgressHandler.HandleList(r.Context(), query.ListProgressQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to list progress")
		return
	}

	stats, err := s.deps.GetStatsHandler.Handle(r.Context(), query.GetStatsQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to aggregate stats")
		return
	}

	writeJSON(w, http.StatusOK, listProgressResponse{
		Records: records,
		Stats:   stats,
	})
}

// handleGetStats handles GET /api/v1/progress/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	stats, err := s.deps.GetStatsHandler.Handle(r.Context(), query.GetStatsQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to aggregate stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleGetStreak handles GET /api/v1/progress/streak
func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	streak, err := s.deps.GetStreakHandler.Handle(r.Context(), query.GetStreakQuery{UserID: userID})
	if err != nil {
		s.writeDomainError(w, r, err, "failed to compute streak")
		return
	}

	writeJSON(w, http.StatusOK, streak)
}

// handleGetCalendar handles GET /api/v1/progress/calendar?year=&month=
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.resolveUser(w, r)
	if !ok {
		return
	}

	q := query.GetCalendarQuery{
		UserID: userID,
		Year:   getQueryParamInt(r, "year", 0),
		Month:  getQueryParamInt(r, "month", 0),
	}

	calendar, err := s.deps.GetCalendarHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to build calendar")
		return
	}

	writeJSON(w, http.StatusOK, calendar)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// resolveUser extracts the caller identity or writes a 401.
func (s *Server) resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.deps.UserResolver.Resolve(r)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Request carries no user identity")
		return "", false
	}
	return userID, true
}

// decodeBody decodes a JSON request body or writes a 400.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON")
		return false
	}
	return true
}

// writeDomainError maps application errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, progress.ErrRecordNotFound), shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "No progress recorded for this lesson")
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case shared.IsStorageUnavailable(err):
		s.logger.Error(logMsg, logger.Err(err), logger.String("request_id", getRequestID(r.Context())))
		writeJSONError(w, http.StatusServiceUnavailable, "storage_unavailable", "Storage is temporarily unavailable")
	default:
		s.logger.Error(logMsg, logger.Err(err), logger.String("request_id", getRequestID(r.Context())))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
