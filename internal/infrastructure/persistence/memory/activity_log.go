package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

type activityKey struct {
	userID activity.UserID
	day    timeutil.Day
}

// ActivityLog is an in-memory activity.Log. The create-if-absent-else-
// increment transition happens under one lock acquisition, so racing
// same-day completions end up in exactly one entry.
type ActivityLog struct {
	mu      sync.Mutex
	entries map[activityKey]*activity.DayEntry
	now     func() time.Time
}

// NewActivityLog creates an empty ActivityLog.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{
		entries: make(map[activityKey]*activity.DayEntry),
		now:     time.Now,
	}
}

// RecordDay implements activity.Log.
func (l *ActivityLog) RecordDay(ctx context.Context, userID activity.UserID, day timeutil.Day) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !userID.IsValid() {
		return activity.ErrInvalidUserID
	}
	if day.IsZero() {
		return activity.ErrInvalidDay
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := activityKey{userID: userID, day: day}
	now := l.now()

	if entry, ok := l.entries[key]; ok {
		entry.Increment(now)
		return nil
	}
	l.entries[key] = activity.NewDayEntry(userID, day, now)
	return nil
}

// AllDaysDescending implements activity.Log.
func (l *ActivityLog) AllDaysDescending(ctx context.Context, userID activity.UserID) ([]timeutil.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	days := make([]timeutil.Day, 0)
	for key := range l.entries {
		if key.userID == userID {
			days = append(days, key.day)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[j].Before(days[i])
	})
	return days, nil
}

// DaysInRange implements activity.Log.
func (l *ActivityLog) DaysInRange(ctx context.Context, userID activity.UserID, startInclusive, endExclusive timeutil.Day) ([]timeutil.Day, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	days := make([]timeutil.Day, 0)
	for key := range l.entries {
		if key.userID != userID {
			continue
		}
		if key.day.Before(startInclusive) || !key.day.Before(endExclusive) {
			continue
		}
		days = append(days, key.day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days, nil
}

// Entry returns the stored entry for a key, for assertions in tests.
func (l *ActivityLog) Entry(userID activity.UserID, day timeutil.Day) (*activity.DayEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[activityKey{userID: userID, day: day}]
	if !ok {
		return nil, false
	}
	return entry.Clone(), true
}
