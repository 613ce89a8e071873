// Package postgres implements the PostgreSQL persistence layer for the
// Lingua Learning Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create progress table
-- Version: 001

-- Per-(user, lesson) cumulative progress records.
-- The composite unique key backs the atomic ON CONFLICT upsert.
CREATE TABLE IF NOT EXISTS progress (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id VARCHAR(100) NOT NULL,
    lesson_id VARCHAR(100) NOT NULL,
    total_attempts INTEGER NOT NULL DEFAULT 0,
    completion_count INTEGER NOT NULL DEFAULT 0,
    last_score INTEGER NOT NULL DEFAULT 0,
    best_score INTEGER NOT NULL DEFAULT 0,
    total_questions INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, lesson_id),

    -- Constraints for data integrity
    CONSTRAINT valid_attempts CHECK (total_attempts >= 0),
    CONSTRAINT valid_completions CHECK (completion_count >= 0 AND completion_count <= total_attempts),
    CONSTRAINT valid_scores CHECK (last_score >= 0 AND best_score >= 0)
);

CREATE INDEX IF NOT EXISTS idx_progress_user ON progress(user_id, created_at);
`

const migration001Down = `
DROP TABLE IF EXISTS progress;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE ACTIVITY LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create activity log table
-- Version: 002

-- One row per (user, calendar day). The composite unique key makes the
-- create-if-absent-else-increment upsert race-free.
CREATE TABLE IF NOT EXISTS activity_log (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id VARCHAR(100) NOT NULL,
    day DATE NOT NULL,
    lessons_completed_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    last_updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, day),

    CONSTRAINT valid_count CHECK (lessons_completed_count >= 1)
);

CREATE INDEX IF NOT EXISTS idx_activity_log_user_day ON activity_log(user_id, day DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS activity_log;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_progress",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_activity_log",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
