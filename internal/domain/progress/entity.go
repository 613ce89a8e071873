// Package progress contains domain entities and business logic for
// per-lesson progress records: cumulative attempt counters, best scores,
// and completion counts keyed by (user, lesson).
// This is a pure domain layer with zero external dependencies.
package progress

import (
	"errors"
	"time"
)

// Domain errors for progress package.
var (
	ErrRecordNotFound  = errors.New("progress: record not found")
	ErrInvalidUserID   = errors.New("progress: invalid user ID")
	ErrInvalidLessonID = errors.New("progress: invalid lesson ID")
	ErrInvalidScore    = errors.New("progress: score must be between 0 and total questions")
	ErrInvalidTotal    = errors.New("progress: total questions must be at least 1")
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

// LessonID represents a unique identifier for a lesson (e.g., "greetings-01").
type LessonID string

// IsValid checks if the lesson ID is valid.
func (l LessonID) IsValid() bool {
	return l != ""
}

// String returns the string representation of LessonID.
func (l LessonID) String() string {
	return string(l)
}

// Attempt is one validated completion event: a score out of a total.
// The boundary validates it before it reaches any write path.
type Attempt struct {
	UserID         UserID
	LessonID       LessonID
	Score          int
	TotalQuestions int
}

// NewAttempt validates and constructs an Attempt.
// Rules: total questions >= 1, 0 <= score <= total questions.
func NewAttempt(userID UserID, lessonID LessonID, score, totalQuestions int) (Attempt, error) {
	if !userID.IsValid() {
		return Attempt{}, ErrInvalidUserID
	}
	if !lessonID.IsValid() {
		return Attempt{}, ErrInvalidLessonID
	}
	if totalQuestions < 1 {
		return Attempt{}, ErrInvalidTotal
	}
	if score < 0 || score > totalQuestions {
		return Attempt{}, ErrInvalidScore
	}
	return Attempt{
		UserID:         userID,
		LessonID:       lessonID,
		Score:          score,
		TotalQuestions: totalQuestions,
	}, nil
}

// IsCompletion reports whether the attempt answered every question.
func (a Attempt) IsCompletion() bool {
	return a.Score == a.TotalQuestions
}

// Record is the cumulative progress for one (user, lesson) pair.
// It is created on the first attempt for the key and mutated on every
// later attempt; it is removed only by an explicit reset.
//
// Invariant: CompletionCount <= TotalAttempts.
type Record struct {
	UserID          UserID
	LessonID        LessonID
	TotalAttempts   int // increments on every attempt
	CompletionCount int // increments only on full-score attempts
	LastScore       int // score of the most recent attempt
	BestScore       int // running maximum over all attempts
	TotalQuestions  int // question count of the most recent attempt
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRecord creates the record for a first attempt.
func NewRecord(a Attempt, now time.Time) *Record {
	r := &Record{
		UserID:    a.UserID,
		LessonID:  a.LessonID,
		CreatedAt: now,
	}
	r.Apply(a, now)
	return r
}

// Apply folds one attempt into the record. Postgres performs the equivalent
// arithmetic inside a single upsert statement; this method is the in-memory
// counterpart and must only be called while the store's lock is held.
func (r *Record) Apply(a Attempt, now time.Time) {
	r.TotalAttempts++
	r.LastScore = a.Score
	if a.Score > r.BestScore {
		r.BestScore = a.Score
	}
	if a.IsCompletion() {
		r.CompletionCount++
	}
	r.TotalQuestions = a.TotalQuestions
	r.UpdatedAt = now
}

// IsCompleted reports whether the lesson has ever been fully completed.
func (r *Record) IsCompleted() bool {
	return r.CompletionCount > 0
}

// Clone returns a copy of the record. Stores hand out clones so callers
// cannot mutate shared state.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}
