package postgres

import (
	"context"
	"time"

	"github.com/lingua-hub/lingua-learning-hub/internal/domain/activity"
	"github.com/lingua-hub/lingua-learning-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG
// Implements activity.Log on top of PostgreSQL. The daily bucketing is one
// INSERT ... ON CONFLICT statement keyed by (user_id, day): racing same-day
// completions end up in exactly one row with every completion counted.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityLog is the PostgreSQL implementation of activity.Log.
type ActivityLog struct {
	conn *Connection
}

// NewActivityLog creates a new ActivityLog.
func NewActivityLog(conn *Connection) *ActivityLog {
	return &ActivityLog{conn: conn}
}

const recordDaySQL = `
INSERT INTO activity_log (user_id, day, lessons_completed_count, created_at, last_updated)
VALUES ($1, $2, 1, NOW(), NOW())
ON CONFLICT (user_id, day) DO UPDATE SET
    lessons_completed_count = activity_log.lessons_completed_count + 1,
    last_updated            = NOW()
`

// RecordDay implements activity.Log.
func (l *ActivityLog) RecordDay(ctx context.Context, userID activity.UserID, day timeutil.Day) error {
	if !userID.IsValid() {
		return activity.ErrInvalidUserID
	}
	if day.IsZero() {
		return activity.ErrInvalidDay
	}

	_, err := l.conn.Exec(ctx, recordDaySQL, userID.String(), day.Time())
	if err != nil {
		return shared.StorageError("activity", "RecordDay", err)
	}
	return nil
}

const allDaysSQL = `
SELECT day FROM activity_log
WHERE user_id = $1
ORDER BY day DESC
`

// AllDaysDescending implements activity.Log.
func (l *ActivityLog) AllDaysDescending(ctx context.Context, userID activity.UserID) ([]timeutil.Day, error) {
	rows, err := l.conn.Query(ctx, allDaysSQL, userID.String())
	if err != nil {
		return nil, shared.StorageError("activity", "AllDaysDescending", err)
	}
	defer rows.Close()

	days := make([]timeutil.Day, 0)
	for rows.Next() {
		var raw time.Time
		if err := rows.Scan(&raw); err != nil {
			return nil, shared.StorageError("activity", "AllDaysDescending", err)
		}
		days = append(days, timeutil.FromTime(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageError("activity", "AllDaysDescending", err)
	}
	return days, nil
}

const daysInRangeSQL = `
SELECT day FROM activity_log
WHERE user_id = $1 AND day >= $2 AND day < $3
ORDER BY day
`

// DaysInRange implements activity.Log.
func (l *ActivityLog) DaysInRange(ctx context.Context, userID activity.UserID, startInclusive, endExclusive timeutil.Day) ([]timeutil.Day, error) {
	rows, err := l.conn.Query(ctx, daysInRangeSQL, userID.String(), startInclusive.Time(), endExclusive.Time())
	if err != nil {
		return nil, shared.StorageError("activity", "DaysInRange", err)
	}
	defer rows.Close()

	days := make([]timeutil.Day, 0)
	for rows.Next() {
		var raw time.Time
		if err := rows.Scan(&raw); err != nil {
			return nil, shared.StorageError("activity", "DaysInRange", err)
		}
		days = append(days, timeutil.FromTime(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageError("activity", "DaysInRange", err)
	}
	return days, nil
}
