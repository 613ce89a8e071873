package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

func mustAttempt(t *testing.T, user, lesson string, score, total int) progress.Attempt {
	t.Helper()
	a, err := progress.NewAttempt(progress.UserID(user), progress.LessonID(lesson), score, total)
	require.NoError(t, err)
	return a
}

func TestProgressStoreSaveAccumulates(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	scores := []int{2, 5, 3, 5, 1}
	var last *progress.Record
	for _, s := range scores {
		var err error
		last, err = store.Save(ctx, mustAttempt(t, "u1", "lesson-1", s, 5))
		require.NoError(t, err)
	}

	assert.Equal(t, 5, last.TotalAttempts)
	assert.Equal(t, 2, last.CompletionCount)
	assert.Equal(t, 5, last.BestScore)
	assert.Equal(t, 1, last.LastScore)
}

func TestProgressStoreGetAbsent(t *testing.T) {
	store := NewProgressStore()

	_, err := store.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, progress.ErrRecordNotFound)
}

func TestProgressStoreListByUserCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	for _, lesson := range []string{"c-lesson", "a-lesson", "b-lesson"} {
		_, err := store.Save(ctx, mustAttempt(t, "u1", lesson, 1, 5))
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, mustAttempt(t, "u2", "other", 1, 5))
	require.NoError(t, err)

	records, err := store.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, progress.LessonID("c-lesson"), records[0].LessonID)
	assert.Equal(t, progress.LessonID("a-lesson"), records[1].LessonID)
	assert.Equal(t, progress.LessonID("b-lesson"), records[2].LessonID)
}

func TestProgressStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	_, err := store.Save(ctx, mustAttempt(t, "u1", "lesson-1", 3, 5))
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Get(ctx, "u1", "lesson-1")
	assert.ErrorIs(t, err, progress.ErrRecordNotFound)
}

func TestProgressStoreConcurrentSavesExact(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	const goroutines = 50
	const savesPerGoroutine = 20

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < savesPerGoroutine; i++ {
				// Alternate full and partial scores.
				score := 5
				if (g+i)%2 == 0 {
					score = 3
				}
				_, err := store.Save(ctx, mustAttempt(t, "u1", "lesson-1", score, 5))
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	record, err := store.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.Equal(t, goroutines*savesPerGoroutine, record.TotalAttempts, "no increment lost")
	assert.Equal(t, goroutines*savesPerGoroutine/2, record.CompletionCount)
	assert.Equal(t, 5, record.BestScore)
}

func TestActivityLogSameDayIdempotent(t *testing.T) {
	ctx := context.Background()
	log := NewActivityLog()
	day := timeutil.Date(2025, 1, 3)

	for i := 0; i < 4; i++ {
		require.NoError(t, log.RecordDay(ctx, "u1", day))
	}

	entry, ok := log.Entry("u1", day)
	require.True(t, ok)
	assert.Equal(t, 4, entry.LessonsCompletedCount)

	days, err := log.AllDaysDescending(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, days, 1, "exactly one entry per day")
}

func TestActivityLogConcurrentSameDayOneRow(t *testing.T) {
	ctx := context.Background()
	log := NewActivityLog()
	day := timeutil.Date(2025, 1, 3)

	const writers = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, log.RecordDay(ctx, "u1", day))
		}()
	}
	wg.Wait()

	days, err := log.AllDaysDescending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, days, 1)

	entry, ok := log.Entry("u1", day)
	require.True(t, ok)
	assert.Equal(t, writers, entry.LessonsCompletedCount)
}

func TestActivityLogOrdering(t *testing.T) {
	ctx := context.Background()
	log := NewActivityLog()

	for _, d := range []string{"2025-01-05", "2025-01-01", "2025-01-03"} {
		day, err := timeutil.ParseDay(d)
		require.NoError(t, err)
		require.NoError(t, log.RecordDay(ctx, "u1", day))
	}

	descending, err := log.AllDaysDescending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, descending, 3)
	assert.Equal(t, "2025-01-05", descending[0].String())
	assert.Equal(t, "2025-01-03", descending[1].String())
	assert.Equal(t, "2025-01-01", descending[2].String())
}

func TestActivityLogDaysInRangeHalfOpen(t *testing.T) {
	ctx := context.Background()
	log := NewActivityLog()

	for _, d := range []string{"2024-12-31", "2025-01-01", "2025-01-15", "2025-01-31", "2025-02-01"} {
		day, err := timeutil.ParseDay(d)
		require.NoError(t, err)
		require.NoError(t, log.RecordDay(ctx, "u1", day))
	}

	start, end := timeutil.MonthRange(2025, 1)
	days, err := log.DaysInRange(ctx, "u1", start, end)
	require.NoError(t, err)

	got := make([]string, 0, len(days))
	for _, d := range days {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2025-01-01", "2025-01-15", "2025-01-31"}, got)
}

func TestActivityLogIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	log := NewActivityLog()
	day := timeutil.Date(2025, 1, 3)

	require.NoError(t, log.RecordDay(ctx, "u1", day))

	days, err := log.AllDaysDescending(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, days)
}

var _ activity.Log = (*ActivityLog)(nil)
var _ progress.Repository = (*ProgressStore)(nil)
