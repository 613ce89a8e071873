package query

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// Merges progress-record totals with the derived streak into one per-user
// summary. Served from an optional read-side cache when available.
// ══════════════════════════════════════════════════════════════════════════════

// GetStatsQuery asks for the aggregate summary of one user.
type GetStatsQuery struct {
	UserID string
}

// Validate validates the query.
func (q GetStatsQuery) Validate() error {
	if q.UserID == "" {
		return progress.ErrInvalidUserID
	}
	return nil
}

// StatsDTO is the per-user aggregate summary.
type StatsDTO struct {
	UserID           string  `json:"user_id"`
	LessonsStarted   int     `json:"lessons_started"`
	TotalCompleted   int     `json:"total_completed"`
	TotalAttempts    int     `json:"total_attempts"`
	AverageBestScore float64 `json:"average_best_score"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastActiveDate   *string `json:"last_active_date"` // YYYY-MM-DD, null with no history
}

// SummaryCache is a read-side cache for per-user stats. Implementations
// are optional; a nil cache means every query hits storage.
type SummaryCache interface {
	// Get returns the cached summary, or (nil, nil) on a miss.
	Get(ctx context.Context, userID string) (*StatsDTO, error)

	// Set stores the summary.
	Set(ctx context.Context, userID string, stats *StatsDTO) error

	// Invalidate drops the summary for a user.
	Invalidate(ctx context.Context, userID string) error
}

// GetStatsHandler handles aggregate stats queries.
type GetStatsHandler struct {
	progressRepo progress.Repository
	activityLog  activity.Log
	cache        SummaryCache // may be nil
	location     *time.Location
}

// NewGetStatsHandler creates a new GetStatsHandler. cache may be nil.
func NewGetStatsHandler(
	progressRepo progress.Repository,
	activityLog activity.Log,
	cache SummaryCache,
	location *time.Location,
) *GetStatsHandler {
	if location == nil {
		location = timeutil.DefaultLocation
	}
	return &GetStatsHandler{
		progressRepo: progressRepo,
		activityLog:  activityLog,
		cache:        cache,
		location:     location,
	}
}

// Handle executes the stats query. A user with no history gets the
// zero-valued summary, never an error.
func (h *GetStatsHandler) Handle(ctx context.Context, q GetStatsQuery) (*StatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStats", shared.ErrValidation, "invalid query", err)
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, q.UserID); err == nil && cached != nil {
			return cached, nil
		}
		// Cache failures degrade to a storage read.
	}

	records, err := h.progressRepo.ListByUser(ctx, progress.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_stats: list records: %w", err)
	}

	days, err := h.activityLog.AllDaysDescending(ctx, activity.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_stats: fetch activity days: %w", err)
	}

	stats := &StatsDTO{
		UserID:         q.UserID,
		LessonsStarted: len(records),
	}

	bestSum := 0
	for _, r := range records {
		stats.TotalCompleted += r.CompletionCount
		stats.TotalAttempts += r.TotalAttempts
		bestSum += r.BestScore
	}
	if len(records) > 0 {
		stats.AverageBestScore = roundTwoDecimals(float64(bestSum) / float64(len(records)))
	}

	streak := activity.ComputeStreak(days, timeutil.Today(h.location))
	stats.CurrentStreak = streak.CurrentStreak
	stats.LongestStreak = streak.LongestStreak
	if streak.LastActiveDate != nil {
		formatted := streak.LastActiveDate.String()
		stats.LastActiveDate = &formatted
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, q.UserID, stats)
	}

	return stats, nil
}

// roundTwoDecimals rounds half away from zero to 2 decimal places.
func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
