package postgres

import (
	"context"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/progress"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY
// Implements progress.Repository on top of PostgreSQL. All counter updates
// run inside one INSERT ... ON CONFLICT statement, so concurrent saves for
// the same (user, lesson) key are serialized by the database row lock and
// never lose an increment or a max update.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository is the PostgreSQL implementation of progress.Repository.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

const saveProgressSQL = `
INSERT INTO progress (
    user_id, lesson_id, total_attempts, completion_count,
    last_score, best_score, total_questions, created_at, updated_at
)
VALUES ($1, $2, 1, CASE WHEN $3 = $4 THEN 1 ELSE 0 END, $3, $3, $4, NOW(), NOW())
ON CONFLICT (user_id, lesson_id) DO UPDATE SET
    total_attempts   = progress.total_attempts + 1,
    completion_count = progress.completion_count +
                       CASE WHEN EXCLUDED.last_score = EXCLUDED.total_questions THEN 1 ELSE 0 END,
    last_score       = EXCLUDED.last_score,
    best_score       = GREATEST(progress.best_score, EXCLUDED.last_score),
    total_questions  = EXCLUDED.total_questions,
    updated_at       = NOW()
RETURNING user_id, lesson_id, total_attempts, completion_count,
          last_score, best_score, total_questions, created_at, updated_at
`

// Save implements progress.Repository.
func (r *ProgressRepository) Save(ctx context.Context, attempt progress.Attempt) (*progress.Record, error) {
	row := r.conn.QueryRow(ctx, saveProgressSQL,
		attempt.UserID.String(),
		attempt.LessonID.String(),
		attempt.Score,
		attempt.TotalQuestions,
	)

	record, err := scanRecord(row)
	if err != nil {
		return nil, shared.StorageError("progress", "Save", err)
	}
	return record, nil
}

const getProgressSQL = `
SELECT user_id, lesson_id, total_attempts, completion_count,
       last_score, best_score, total_questions, created_at, updated_at
FROM progress
WHERE user_id = $1 AND lesson_id = $2
`

// Get implements progress.Repository.
func (r *ProgressRepository) Get(ctx context.Context, userID progress.UserID, lessonID progress.LessonID) (*progress.Record, error) {
	row := r.conn.QueryRow(ctx, getProgressSQL, userID.String(), lessonID.String())

	record, err := scanRecord(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, progress.ErrRecordNotFound
		}
		return nil, shared.StorageError("progress", "Get", err)
	}
	return record, nil
}

const listProgressSQL = `
SELECT user_id, lesson_id, total_attempts, completion_count,
       last_score, best_score, total_questions, created_at, updated_at
FROM progress
WHERE user_id = $1
ORDER BY created_at, lesson_id
`

// ListByUser implements progress.Repository.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID progress.UserID) ([]*progress.Record, error) {
	rows, err := r.conn.Query(ctx, listProgressSQL, userID.String())
	if err != nil {
		return nil, shared.StorageError("progress", "ListByUser", err)
	}
	defer rows.Close()

	records := make([]*progress.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, shared.StorageError("progress", "ListByUser", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageError("progress", "ListByUser", err)
	}
	return records, nil
}

const deleteProgressSQL = `
DELETE FROM progress WHERE user_id = $1 AND lesson_id = $2
`

// Delete implements progress.Repository.
func (r *ProgressRepository) Delete(ctx context.Context, userID progress.UserID, lessonID progress.LessonID) (bool, error) {
	tag, err := r.conn.Exec(ctx, deleteProgressSQL, userID.String(), lessonID.String())
	if err != nil {
		return false, shared.StorageError("progress", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*progress.Record, error) {
	var (
		record   progress.Record
		userID   string
		lessonID string
		created  time.Time
		updated  time.Time
	)
	err := row.Scan(
		&userID,
		&lessonID,
		&record.TotalAttempts,
		&record.CompletionCount,
		&record.LastScore,
		&record.BestScore,
		&record.TotalQuestions,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	record.UserID = progress.UserID(userID)
	record.LessonID = progress.LessonID(lessonID)
	record.CreatedAt = created
	record.UpdatedAt = updated
	return &record, nil
}
