package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STREAK QUERY
// Derives the learning streak from the daily activity log.
// ══════════════════════════════════════════════════════════════════════════════

// GetStreakQuery asks for the streak summary of one user.
type GetStreakQuery struct {
	UserID string

	// ReferenceDay anchors the current-streak check. Zero means "today"
	// in the engine's timezone.
	ReferenceDay timeutil.Day
}

// Validate validates the query.
func (q GetStreakQuery) Validate() error {
	if q.UserID == "" {
		return activity.ErrInvalidUserID
	}
	return nil
}

// StreakDTO is the read-side shape of the streak summary.
type StreakDTO struct {
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	LastActiveDate  *string `json:"last_active_date"` // YYYY-MM-DD, null with no history
	TotalActiveDays int     `json:"total_active_days"`
}

func toStreakDTO(s activity.StreakSummary) StreakDTO {
	dto := StreakDTO{
		CurrentStreak:   s.CurrentStreak,
		LongestStreak:   s.LongestStreak,
		TotalActiveDays: s.TotalActiveDays,
	}
	if s.LastActiveDate != nil {
		formatted := s.LastActiveDate.String()
		dto.LastActiveDate = &formatted
	}
	return dto
}

// GetStreakHandler handles streak queries.
type GetStreakHandler struct {
	activityLog activity.Log
	location    *time.Location
}

// NewGetStreakHandler creates a new GetStreakHandler.
func NewGetStreakHandler(activityLog activity.Log, location *time.Location) *GetStreakHandler {
	if location == nil {
		location = timeutil.DefaultLocation
	}
	return &GetStreakHandler{
		activityLog: activityLog,
		location:    location,
	}
}

// Handle executes the streak query. A user with no history gets the
// zero-valued summary, never an error.
func (h *GetStreakHandler) Handle(ctx context.Context, q GetStreakQuery) (*StreakDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStreak", shared.ErrValidation, "invalid query", err)
	}

	days, err := h.activityLog.AllDaysDescending(ctx, activity.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_streak: fetch activity days: %w", err)
	}

	reference := q.ReferenceDay
	if reference.IsZero() {
		reference = timeutil.Today(h.location)
	}

	dto := toStreakDTO(activity.ComputeStreak(days, reference))
	return &dto, nil
}
