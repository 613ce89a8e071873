// Package activity contains domain entities and business logic for the
// daily activity log and the learning-streak arithmetic derived from it.
// This is a pure domain layer with zero external dependencies beyond
// the project's civil-day helpers.
package activity

import (
	"errors"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// Domain errors for activity package.
var (
	ErrInvalidUserID = errors.New("activity: invalid user ID")
	ErrInvalidDay    = errors.New("activity: invalid day")
)

// UserID represents a unique identifier for a learner.
type UserID string

// IsValid checks if the user ID is valid.
func (u UserID) IsValid() bool {
	return u != ""
}

// String returns the string representation of UserID.
func (u UserID) String() string {
	return string(u)
}

// DayEntry is the activity record for one (user, calendar day) pair.
// At most one entry per key ever exists: the first completion of the day
// creates it, every later completion that day increments the counter.
type DayEntry struct {
	UserID                UserID
	Day                   timeutil.Day
	LessonsCompletedCount int
	CreatedAt             time.Time // set once, on the first activity of the day
	LastUpdated           time.Time
}

// NewDayEntry creates the entry for the first completion of a day.
func NewDayEntry(userID UserID, day timeutil.Day, now time.Time) *DayEntry {
	return &DayEntry{
		UserID:                userID,
		Day:                   day,
		LessonsCompletedCount: 1,
		CreatedAt:             now,
		LastUpdated:           now,
	}
}

// Increment records one more completion on the same day. CreatedAt is
// untouched. Must only be called while the store's lock is held; Postgres
// performs the equivalent arithmetic inside a single upsert statement.
func (e *DayEntry) Increment(now time.Time) {
	e.LessonsCompletedCount++
	e.LastUpdated = now
}

// Clone returns a copy of the entry.
func (e *DayEntry) Clone() *DayEntry {
	c := *e
	return &c
}
