// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERIES
// Point lookup of one (user, lesson) record and the full per-user list.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressDTO is the read-side shape of one progress record.
type ProgressDTO struct {
	UserID          string    `json:"user_id"`
	LessonID        string    `json:"lesson_id"`
	TotalAttempts   int       `json:"total_attempts"`
	CompletionCount int       `json:"completion_count"`
	LastScore       int       `json:"last_score"`
	BestScore       int       `json:"best_score"`
	TotalQuestions  int       `json:"total_questions"`
	Completed       bool      `json:"completed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toProgressDTO(r *progress.Record) ProgressDTO {
	return ProgressDTO{
		UserID:          r.UserID.String(),
		LessonID:        r.LessonID.String(),
		TotalAttempts:   r.TotalAttempts,
		CompletionCount: r.CompletionCount,
		LastScore:       r.LastScore,
		BestScore:       r.BestScore,
		TotalQuestions:  r.TotalQuestions,
		Completed:       r.IsCompleted(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// GetLessonProgressQuery asks for one (user, lesson) record.
type GetLessonProgressQuery struct {
	UserID   string
	LessonID string
}

// Validate validates the query.
func (q GetLessonProgressQuery) Validate() error {
	if q.UserID == "" {
		return progress.ErrInvalidUserID
	}
	if q.LessonID == "" {
		return progress.ErrInvalidLessonID
	}
	return nil
}

// ListProgressQuery asks for every record of one user.
type ListProgressQuery struct {
	UserID string
}

// Validate validates the query.
func (q ListProgressQuery) Validate() error {
	if q.UserID == "" {
		return progress.ErrInvalidUserID
	}
	return nil
}

// GetProgressHandler serves both progress read queries.
type GetProgressHandler struct {
	progressRepo progress.Repository
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(progressRepo progress.Repository) *GetProgressHandler {
	return &GetProgressHandler{progressRepo: progressRepo}
}

// HandleOne returns the record for one lesson. Absence surfaces as
// progress.ErrRecordNotFound so the boundary can map it to not-found.
func (h *GetProgressHandler) HandleOne(ctx context.Context, q GetLessonProgressQuery) (*ProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLessonProgress", shared.ErrValidation, "invalid query", err)
	}

	record, err := h.progressRepo.Get(ctx, progress.UserID(q.UserID), progress.LessonID(q.LessonID))
	if err != nil {
		return nil, fmt.Errorf("get_progress: %w", err)
	}

	dto := toProgressDTO(record)
	return &dto, nil
}

// HandleList returns all records of a user in creation order.
// A user with no records gets an empty list, not an error.
func (h *GetProgressHandler) HandleList(ctx context.Context, q ListProgressQuery) ([]ProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListProgress", shared.ErrValidation, "invalid query", err)
	}

	records, err := h.progressRepo.ListByUser(ctx, progress.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("get_progress: list: %w", err)
	}

	dtos := make([]ProgressDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, toProgressDTO(r))
	}
	return dtos, nil
}
