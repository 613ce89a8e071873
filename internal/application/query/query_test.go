package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/internal/infrastructure/persistence/memory"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

func seedProgress(t *testing.T, store *memory.ProgressStore, user, lesson string, score, total int) {
	t.Helper()
	a, err := progress.NewAttempt(progress.UserID(user), progress.LessonID(lesson), score, total)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), a)
	require.NoError(t, err)
}

func seedDay(t *testing.T, log *memory.ActivityLog, user, date string) {
	t.Helper()
	day, err := timeutil.ParseDay(date)
	require.NoError(t, err)
	require.NoError(t, log.RecordDay(context.Background(), activity.UserID(user), day))
}

func TestGetProgressHandleOne(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	seedProgress(t, store, "u1", "lesson-1", 4, 5)

	h := NewGetProgressHandler(store)

	dto, err := h.HandleOne(ctx, GetLessonProgressQuery{UserID: "u1", LessonID: "lesson-1"})
	require.NoError(t, err)
	assert.Equal(t, "lesson-1", dto.LessonID)
	assert.Equal(t, 4, dto.BestScore)
	assert.False(t, dto.Completed)

	_, err = h.HandleOne(ctx, GetLessonProgressQuery{UserID: "u1", LessonID: "missing"})
	assert.ErrorIs(t, err, progress.ErrRecordNotFound)
}

func TestGetProgressHandleListEmpty(t *testing.T) {
	h := NewGetProgressHandler(memory.NewProgressStore())

	dtos, err := h.HandleList(context.Background(), ListProgressQuery{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, dtos)
	assert.NotNil(t, dtos, "empty list, not null")
}

func TestGetStreakHandler(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActivityLog()
	for _, d := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
		seedDay(t, log, "u1", d)
	}

	h := NewGetStreakHandler(log, time.UTC)

	dto, err := h.Handle(ctx, GetStreakQuery{UserID: "u1", ReferenceDay: timeutil.Date(2025, 1, 3)})
	require.NoError(t, err)
	assert.Equal(t, 3, dto.CurrentStreak)
	assert.Equal(t, 3, dto.LongestStreak)
	assert.Equal(t, 3, dto.TotalActiveDays)
	require.NotNil(t, dto.LastActiveDate)
	assert.Equal(t, "2025-01-03", *dto.LastActiveDate)
}

func TestGetStreakHandlerNoHistory(t *testing.T) {
	h := NewGetStreakHandler(memory.NewActivityLog(), time.UTC)

	dto, err := h.Handle(context.Background(), GetStreakQuery{UserID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, dto.CurrentStreak)
	assert.Zero(t, dto.LongestStreak)
	assert.Zero(t, dto.TotalActiveDays)
	assert.Nil(t, dto.LastActiveDate)
}

func TestGetStatsHandlerAggregation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()

	// Best scores 2, 4, 3 across three lessons.
	seedProgress(t, store, "u1", "l1", 2, 5)
	seedProgress(t, store, "u1", "l2", 4, 5)
	seedProgress(t, store, "u1", "l3", 3, 5)
	// One completion on l2.
	seedProgress(t, store, "u1", "l2", 5, 5)
	seedDay(t, log, "u1", "2025-01-02")
	seedDay(t, log, "u1", "2025-01-03")

	h := NewGetStatsHandler(store, log, nil, time.UTC)

	stats, err := h.Handle(ctx, GetStatsQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.LessonsStarted)
	assert.Equal(t, 1, stats.TotalCompleted)
	assert.Equal(t, 4, stats.TotalAttempts)
	// Best scores are now 2, 5, 3 -> mean 3.33.
	assert.InDelta(t, 3.33, stats.AverageBestScore, 0.0001)
	require.NotNil(t, stats.LastActiveDate)
	assert.Equal(t, "2025-01-03", *stats.LastActiveDate)
}

func TestGetStatsHandlerMeanRounding(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()

	seedProgress(t, store, "u1", "l1", 2, 5)
	seedProgress(t, store, "u1", "l2", 4, 5)
	seedProgress(t, store, "u1", "l3", 3, 5)

	h := NewGetStatsHandler(store, log, nil, time.UTC)
	stats, err := h.Handle(ctx, GetStatsQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, stats.AverageBestScore)
}

func TestGetStatsHandlerNoHistory(t *testing.T) {
	h := NewGetStatsHandler(memory.NewProgressStore(), memory.NewActivityLog(), nil, time.UTC)

	stats, err := h.Handle(context.Background(), GetStatsQuery{UserID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, stats.LessonsStarted)
	assert.Zero(t, stats.TotalAttempts)
	assert.Zero(t, stats.AverageBestScore)
	assert.Nil(t, stats.LastActiveDate)
}

// fakeCache is a map-backed SummaryCache.
type fakeCache struct {
	data map[string]*StatsDTO
	hits int
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string]*StatsDTO)} }

func (c *fakeCache) Get(ctx context.Context, userID string) (*StatsDTO, error) {
	if s, ok := c.data[userID]; ok {
		c.hits++
		return s, nil
	}
	return nil, nil
}

func (c *fakeCache) Set(ctx context.Context, userID string, stats *StatsDTO) error {
	c.data[userID] = stats
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID string) error {
	delete(c.data, userID)
	return nil
}

func TestGetStatsHandlerUsesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()
	seedProgress(t, store, "u1", "l1", 3, 5)

	cache := newFakeCache()
	h := NewGetStatsHandler(store, log, cache, time.UTC)

	first, err := h.Handle(ctx, GetStatsQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Zero(t, cache.hits, "first read misses")

	second, err := h.Handle(ctx, GetStatsQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits, "second read is served from cache")
	assert.Equal(t, first, second)
}

func TestGetCalendarHandler(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActivityLog()
	for _, d := range []string{"2025-01-01", "2025-01-03", "2025-01-05"} {
		seedDay(t, log, "u1", d)
	}

	h := NewGetCalendarHandler(log)

	january, err := h.Handle(ctx, GetCalendarQuery{UserID: "u1", Year: 2025, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01", "2025-01-03", "2025-01-05"}, january.ActiveDates)
	assert.Equal(t, 3, january.TotalDays)

	february, err := h.Handle(ctx, GetCalendarQuery{UserID: "u1", Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.Empty(t, february.ActiveDates)
	assert.Zero(t, february.TotalDays)
}

func TestGetCalendarHandlerValidation(t *testing.T) {
	h := NewGetCalendarHandler(memory.NewActivityLog())

	_, err := h.Handle(context.Background(), GetCalendarQuery{UserID: "u1", Year: 2025, Month: 13})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), GetCalendarQuery{UserID: "u1", Year: 2025, Month: 0})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetCalendarHandlerDecemberRange(t *testing.T) {
	ctx := context.Background()
	log := memory.NewActivityLog()
	for _, d := range []string{"2025-12-31", "2026-01-01"} {
		seedDay(t, log, "u1", d)
	}

	h := NewGetCalendarHandler(log)
	december, err := h.Handle(ctx, GetCalendarQuery{UserID: "u1", Year: 2025, Month: 12})
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-31"}, december.ActiveDates)
}
