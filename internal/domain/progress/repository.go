// Package progress contains domain entities and business logic for
// per-lesson progress records.
package progress

import (
	"context"
)

// Repository defines the interface for progress record persistence.
// This interface is implemented by the infrastructure layer.
// The domain layer has no knowledge of the actual storage mechanism.
//
// Implementations must make Save linearizable per (user, lesson) key:
// concurrent saves for the same key must all be reflected exactly, with
// no lost increments or max updates. That rules out full-record
// read-modify-write; storage must offer an atomic upsert primitive.
type Repository interface {
	// Save folds one attempt into the record for (attempt.UserID,
	// attempt.LessonID), creating it on first contact, and returns the
	// resulting state of the record.
	Save(ctx context.Context, attempt Attempt) (*Record, error)

	// Get returns the record for the key, or ErrRecordNotFound.
	Get(ctx context.Context, userID UserID, lessonID LessonID) (*Record, error)

	// ListByUser returns all records for a user in creation order.
	// A user with no records gets an empty slice, not an error.
	ListByUser(ctx context.Context, userID UserID) ([]*Record, error)

	// Delete removes the record for the key and reports whether a record
	// existed. It never touches the activity log.
	Delete(ctx context.Context, userID UserID, lessonID LessonID) (bool, error)
}
