package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE PROGRESS COMMAND
// Resets the progress record for one (user, lesson) pair. The activity log
// is untouched: past activity days stay counted.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteProgressCommand contains the key of the record to reset.
type DeleteProgressCommand struct {
	UserID   string
	LessonID string
}

// Validate validates the command.
func (c DeleteProgressCommand) Validate() error {
	if !progress.UserID(c.UserID).IsValid() {
		return progress.ErrInvalidUserID
	}
	if !progress.LessonID(c.LessonID).IsValid() {
		return progress.ErrInvalidLessonID
	}
	return nil
}

// DeleteProgressResult contains the result of a delete.
type DeleteProgressResult struct {
	// Deleted reports whether a record existed for the key.
	Deleted bool
}

// DeleteProgressHandler handles the DeleteProgressCommand.
type DeleteProgressHandler struct {
	progressRepo progress.Repository
	publisher    shared.EventPublisher
}

// NewDeleteProgressHandler creates a new DeleteProgressHandler.
func NewDeleteProgressHandler(progressRepo progress.Repository, publisher shared.EventPublisher) *DeleteProgressHandler {
	return &DeleteProgressHandler{
		progressRepo: progressRepo,
		publisher:    publisher,
	}
}

// Handle executes the delete progress command.
func (h *DeleteProgressHandler) Handle(ctx context.Context, cmd DeleteProgressCommand) (*DeleteProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("progress", "Delete", shared.ErrValidation, "invalid reset request", err)
	}

	deleted, err := h.progressRepo.Delete(ctx, progress.UserID(cmd.UserID), progress.LessonID(cmd.LessonID))
	if err != nil {
		return nil, fmt.Errorf("delete_progress: delete record: %w", err)
	}

	if deleted && h.publisher != nil {
		_ = h.publisher.Publish(shared.NewProgressDeletedEvent(
			uuid.NewString(), cmd.UserID, cmd.LessonID,
		))
	}

	return &DeleteProgressResult{Deleted: deleted}, nil
}
