// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SAVE PROGRESS COMMAND
// Applies one lesson-completion event: counts today in the activity log,
// then folds the attempt into the (user, lesson) progress record.
// ══════════════════════════════════════════════════════════════════════════════

// SaveProgressCommand contains the data for one completion event.
type SaveProgressCommand struct {
	// UserID is the already-authenticated learner.
	UserID string

	// LessonID identifies the completed lesson.
	LessonID string

	// Score is the number of correctly answered questions.
	Score int

	// TotalQuestions is the question count of the lesson.
	TotalQuestions int
}

// Validate validates the command.
func (c SaveProgressCommand) Validate() error {
	_, err := c.toAttempt()
	return err
}

func (c SaveProgressCommand) toAttempt() (progress.Attempt, error) {
	return progress.NewAttempt(
		progress.UserID(c.UserID),
		progress.LessonID(c.LessonID),
		c.Score,
		c.TotalQuestions,
	)
}

// SaveProgressResult contains the result of a save.
type SaveProgressResult struct {
	// Record is the progress record after the attempt was applied.
	Record *progress.Record

	// Day is the calendar day the activity was counted on.
	Day timeutil.Day

	// Completed reports whether this attempt answered every question.
	Completed bool

	// SavedAt is when the event was processed.
	SavedAt time.Time
}

// SaveProgressHandler handles the SaveProgressCommand.
//
// The activity-log write runs before the progress write. The two writes are
// independent idempotent operations, not one transaction: when the second
// fails the call reports failure and the surviving activity row is benign,
// since day counts only ever grow and the next successful save converges.
type SaveProgressHandler struct {
	progressRepo progress.Repository
	activityLog  activity.Log
	publisher    shared.EventPublisher
	location     *time.Location
	now          func() time.Time
}

// NewSaveProgressHandler creates a new SaveProgressHandler.
// The location defines the civil day activity is bucketed into; nil means
// the engine-wide default.
func NewSaveProgressHandler(
	progressRepo progress.Repository,
	activityLog activity.Log,
	publisher shared.EventPublisher,
	location *time.Location,
) *SaveProgressHandler {
	if location == nil {
		location = timeutil.DefaultLocation
	}
	return &SaveProgressHandler{
		progressRepo: progressRepo,
		activityLog:  activityLog,
		publisher:    publisher,
		location:     location,
		now:          time.Now,
	}
}

// Handle executes the save progress command.
func (h *SaveProgressHandler) Handle(ctx context.Context, cmd SaveProgressCommand) (*SaveProgressResult, error) {
	attempt, err := cmd.toAttempt()
	if err != nil {
		return nil, shared.WrapError("progress", "Save", shared.ErrValidation, "invalid completion event", err)
	}

	now := h.now()
	day := timeutil.DayOf(now, h.location)

	if err := h.activityLog.RecordDay(ctx, activity.UserID(cmd.UserID), day); err != nil {
		return nil, fmt.Errorf("save_progress: record activity day: %w", err)
	}

	record, err := h.progressRepo.Save(ctx, attempt)
	if err != nil {
		// The activity row may already be persisted; that partial state is
		// harmless and converges on the next successful save.
		return nil, fmt.Errorf("save_progress: save record: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewProgressSavedEvent(
			uuid.NewString(), cmd.UserID, cmd.LessonID, cmd.Score, cmd.TotalQuestions,
		))
		_ = h.publisher.Publish(shared.NewActivityDayRecordedEvent(
			uuid.NewString(), cmd.UserID, day.String(),
		))
	}

	return &SaveProgressResult{
		Record:    record,
		Day:       day,
		Completed: attempt.IsCompletion(),
		SavedAt:   now,
	}, nil
}
