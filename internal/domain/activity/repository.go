// Package activity contains domain entities and business logic for the
// daily activity log.
package activity

import (
	"context"

	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// Log defines the interface for daily activity persistence.
// This interface is implemented by the infrastructure layer.
//
// RecordDay must be a single atomic create-if-absent-else-increment
// operation: when two completions for the same (user, day) race within
// the same instant, exactly one entry must exist afterwards with both
// completions counted.
type Log interface {
	// RecordDay counts one completion on the given day, creating the
	// entry on the first completion of that day.
	RecordDay(ctx context.Context, userID UserID, day timeutil.Day) error

	// AllDaysDescending returns every distinct day with activity,
	// newest first. A user with no history gets an empty slice.
	AllDaysDescending(ctx context.Context, userID UserID) ([]timeutil.Day, error)

	// DaysInRange returns the distinct active days in
	// [startInclusive, endExclusive), ascending.
	DaysInRange(ctx context.Context, userID UserID, startInclusive, endExclusive timeutil.Day) ([]timeutil.Day, error)
}
