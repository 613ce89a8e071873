package command

import (
	"context"
	"errors"
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

// capturingBus records published events.
type capturingBus struct {
	events []shared.Event
}

func (b *capturingBus) Publish(event shared.Event) error {
	b.events = append(b.events, event)
	return nil
}

// failingLog always reports a storage failure.
type failingLog struct{}

func (failingLog) RecordDay(ctx context.Context, userID activity.UserID, day timeutil.Day) error {
	return shared.StorageError("activity", "RecordDay", errors.New("connection refused"))
}

func (failingLog) AllDaysDescending(ctx context.Context, userID activity.UserID) ([]timeutil.Day, error) {
	return nil, shared.StorageError("activity", "AllDaysDescending", errors.New("connection refused"))
}

func (failingLog) DaysInRange(ctx context.Context, userID activity.UserID, start, end timeutil.Day) ([]timeutil.Day, error) {
	return nil, shared.StorageError("activity", "DaysInRange", errors.New("connection refused"))
}

// failingRepo rejects every save.
type failingRepo struct {
	progress.Repository
}

func (failingRepo) Save(ctx context.Context, attempt progress.Attempt) (*progress.Record, error) {
	return nil, shared.StorageError("progress", "Save", errors.New("connection refused"))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSaveProgressHandlerHappyPath(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()
	bus := &capturingBus{}

	h := NewSaveProgressHandler(store, log, bus, time.UTC)
	h.now = fixedClock(time.Date(2025, 1, 3, 10, 30, 0, 0, time.UTC))

	result, err := h.Handle(ctx, SaveProgressCommand{
		UserID:         "u1",
		LessonID:       "lesson-1",
		Score:          5,
		TotalQuestions: 5,
	})
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, "2025-01-03", result.Day.String())
	assert.Equal(t, 1, result.Record.TotalAttempts)
	assert.Equal(t, 1, result.Record.CompletionCount)

	entry, ok := log.Entry("u1", timeutil.Date(2025, 1, 3))
	require.True(t, ok)
	assert.Equal(t, 1, entry.LessonsCompletedCount)

	require.Len(t, bus.events, 2)
	assert.Equal(t, shared.EventProgressSaved, bus.events[0].EventType())
	assert.Equal(t, shared.EventActivityDayRecorded, bus.events[1].EventType())
}

func TestSaveProgressHandlerSameDayBucketing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()

	h := NewSaveProgressHandler(store, log, nil, time.UTC)
	h.now = fixedClock(time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		_, err := h.Handle(ctx, SaveProgressCommand{
			UserID: "u1", LessonID: "lesson-1", Score: 3, TotalQuestions: 5,
		})
		require.NoError(t, err)
	}

	days, err := log.AllDaysDescending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, days, 1, "same-day saves collapse into one entry")

	entry, _ := log.Entry("u1", timeutil.Date(2025, 1, 3))
	assert.Equal(t, 3, entry.LessonsCompletedCount)
}

func TestSaveProgressHandlerValidation(t *testing.T) {
	h := NewSaveProgressHandler(memory.NewProgressStore(), memory.NewActivityLog(), nil, time.UTC)

	tests := []struct {
		name string
		cmd  SaveProgressCommand
	}{
		{"missing user", SaveProgressCommand{LessonID: "l1", Score: 1, TotalQuestions: 5}},
		{"missing lesson", SaveProgressCommand{UserID: "u1", Score: 1, TotalQuestions: 5}},
		{"score above total", SaveProgressCommand{UserID: "u1", LessonID: "l1", Score: 6, TotalQuestions: 5}},
		{"negative score", SaveProgressCommand{UserID: "u1", LessonID: "l1", Score: -1, TotalQuestions: 5}},
		{"zero total", SaveProgressCommand{UserID: "u1", LessonID: "l1", Score: 0, TotalQuestions: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestSaveProgressHandlerActivityFailureStopsSave(t *testing.T) {
	store := memory.NewProgressStore()
	h := NewSaveProgressHandler(store, failingLog{}, nil, time.UTC)

	_, err := h.Handle(context.Background(), SaveProgressCommand{
		UserID: "u1", LessonID: "lesson-1", Score: 5, TotalQuestions: 5,
	})
	require.Error(t, err)
	assert.True(t, shared.IsStorageUnavailable(err))

	// The progress write never ran.
	_, err = store.Get(context.Background(), "u1", "lesson-1")
	assert.ErrorIs(t, err, progress.ErrRecordNotFound)
}

func TestSaveProgressHandlerPartialFailureReported(t *testing.T) {
	log := memory.NewActivityLog()
	h := NewSaveProgressHandler(failingRepo{}, log, nil, time.UTC)
	h.now = fixedClock(time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC))

	_, err := h.Handle(context.Background(), SaveProgressCommand{
		UserID: "u1", LessonID: "lesson-1", Score: 5, TotalQuestions: 5,
	})
	require.Error(t, err)
	assert.True(t, shared.IsStorageUnavailable(err))

	// The surviving activity row is benign and stays persisted.
	entry, ok := log.Entry("u1", timeutil.Date(2025, 1, 3))
	require.True(t, ok)
	assert.Equal(t, 1, entry.LessonsCompletedCount)
}

func TestDeleteProgressHandler(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	log := memory.NewActivityLog()
	bus := &capturingBus{}

	save := NewSaveProgressHandler(store, log, nil, time.UTC)
	save.now = fixedClock(time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC))
	_, err := save.Handle(ctx, SaveProgressCommand{UserID: "u1", LessonID: "lesson-1", Score: 5, TotalQuestions: 5})
	require.NoError(t, err)

	h := NewDeleteProgressHandler(store, bus)

	result, err := h.Handle(ctx, DeleteProgressCommand{UserID: "u1", LessonID: "lesson-1"})
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	require.Len(t, bus.events, 1)
	assert.Equal(t, shared.EventProgressDeleted, bus.events[0].EventType())

	// Deleting again reports absence without an event.
	result, err = h.Handle(ctx, DeleteProgressCommand{UserID: "u1", LessonID: "lesson-1"})
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.Len(t, bus.events, 1)

	// The activity log keeps the day.
	days, err := log.AllDaysDescending(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, days, 1)
}
