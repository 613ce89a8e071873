package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-learning-hub/internal/application/command"
	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/persistence/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := memory.NewProgressStore()
	log := memory.NewActivityLog()

	deps := Dependencies{
		SaveProgressHandler:   command.NewSaveProgressHandler(store, log, nil, time.UTC),
		DeleteProgressHandler: command.NewDeleteProgressHandler(store, nil),
		GetProgressHandler:    query.NewGetProgressHandler(store),
		GetStreakHandler:      query.NewGetStreakHandler(log, time.UTC),
		GetStatsHandler:       query.NewGetStatsHandler(store, log, nil, time.UTC),
		GetCalendarHandler:    query.NewGetCalendarHandler(log),
	}

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return NewServer(cfg, deps)
}

func doRequest(t *testing.T, s *Server, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success, "expected success response, got: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, dest))
}

func TestSaveAndGetProgress(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "alice", saveProgressRequest{
		LessonID:       "basics-1",
		Score:          5,
		TotalQuestions: 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved saveProgressResponse
	decodeData(t, rec, &saved)
	assert.Equal(t, "basics-1", saved.Record.LessonID)
	assert.True(t, saved.Completed)
	assert.Equal(t, 1, saved.Record.CompletionCount)
	assert.NotEmpty(t, saved.Day)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/progress/lessons/basics-1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto query.ProgressDTO
	decodeData(t, rec, &dto)
	assert.Equal(t, 5, dto.BestScore)
	assert.Equal(t, 1, dto.TotalAttempts)
}

func TestSaveProgressValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "alice", saveProgressRequest{
		LessonID:       "basics-1",
		Score:          9,
		TotalQuestions: 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveProgressRequiresUser(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "", saveProgressRequest{
		LessonID:       "basics-1",
		Score:          3,
		TotalQuestions: 5,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetLessonProgressNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/progress/lessons/unknown", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProgressIncludesStats(t *testing.T) {
	s := newTestServer(t)

	for _, lesson := range []string{"l1", "l2"} {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "alice", saveProgressRequest{
			LessonID:       lesson,
			Score:          4,
			TotalQuestions: 5,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/progress", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listProgressResponse
	decodeData(t, rec, &resp)
	assert.Len(t, resp.Records, 2)
	require.NotNil(t, resp.Stats)
	assert.Equal(t, 2, resp.Stats.LessonsStarted)
	assert.Equal(t, 1, resp.Stats.CurrentStreak, "both saves landed today")
}

func TestStreakEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "alice", saveProgressRequest{
		LessonID:       "l1",
		Score:          5,
		TotalQuestions: 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/progress/streak", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var streak query.StreakDTO
	decodeData(t, rec, &streak)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.TotalActiveDays)
}

func TestCalendarEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/progress/calendar?year=2025&month=13", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/progress/calendar?year=2025&month=3x", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-numeric month is rejected, not truncated")

	rec = doRequest(t, s, http.MethodGet, "/api/v1/progress/calendar?year=2025&month=1", "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProgress(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/progress", "alice", saveProgressRequest{
		LessonID:       "l1",
		Score:          3,
		TotalQuestions: 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/progress/lessons/l1", "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/progress/lessons/l1", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "second delete finds nothing")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/healthz", "/ready", "/live"} {
		rec := doRequest(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "fixed-id", rr.Header().Get("X-Request-ID"))
}

func TestRateLimiting(t *testing.T) {
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 3

	s := NewServer(cfg, Dependencies{
		SaveProgressHandler:   command.NewSaveProgressHandler(store, log, nil, time.UTC),
		DeleteProgressHandler: command.NewDeleteProgressHandler(store, nil),
		GetProgressHandler:    query.NewGetProgressHandler(store),
		GetStreakHandler:      query.NewGetStreakHandler(log, time.UTC),
		GetStatsHandler:       query.NewGetStatsHandler(store, log, nil, time.UTC),
		GetCalendarHandler:    query.NewGetCalendarHandler(log),
	})

	var last int
	for i := 0; i < 4; i++ {
		rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
