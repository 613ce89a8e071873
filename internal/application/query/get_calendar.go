package query

import (
	"context"
	"fmt"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CALENDAR QUERY
// Projects the activity log into a month-bounded list of active dates.
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarQuery asks for the active days of one user in one month.
type GetCalendarQuery struct {
	UserID string
	Year   int
	Month  int // 1-12
}

// Validate validates the query.
func (q GetCalendarQuery) Validate() error {
	if q.UserID == "" {
		return activity.ErrInvalidUserID
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("get_calendar: month %d: %w", q.Month, shared.ErrValueOutOfRange)
	}
	if q.Year < 1 {
		return fmt.Errorf("get_calendar: year %d: %w", q.Year, shared.ErrValueOutOfRange)
	}
	return nil
}

// CalendarDTO is the month view of active days.
type CalendarDTO struct {
	UserID      string   `json:"user_id"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	ActiveDates []string `json:"active_dates"` // YYYY-MM-DD, ascending, distinct
	TotalDays   int      `json:"total_days"`
}

// GetCalendarHandler handles calendar queries.
type GetCalendarHandler struct {
	activityLog activity.Log
}

// NewGetCalendarHandler creates a new GetCalendarHandler.
func NewGetCalendarHandler(activityLog activity.Log) *GetCalendarHandler {
	return &GetCalendarHandler{activityLog: activityLog}
}

// Handle executes the calendar query. A month without activity yields an
// empty date list, never an error.
func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*CalendarDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetCalendar", shared.ErrValidation, "invalid query", err)
	}

	start, end := timeutil.MonthRange(q.Year, q.Month)
	days, err := h.activityLog.DaysInRange(ctx, activity.UserID(q.UserID), start, end)
	if err != nil {
		return nil, fmt.Errorf("get_calendar: fetch days: %w", err)
	}

	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.String())
	}

	return &CalendarDTO{
		UserID:      q.UserID,
		Year:        q.Year,
		Month:       q.Month,
		ActiveDates: dates,
		TotalDays:   len(dates),
	}, nil
}
