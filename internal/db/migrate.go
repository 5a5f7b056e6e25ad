package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the whole
// list is replayed on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Timestamps are stored as UTC text in a fixed-width layout so that range
// predicates can compare them lexicographically.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL,
		image               TEXT NOT NULL DEFAULT '',
		provider            TEXT NOT NULL DEFAULT 'password'
		                    CHECK(provider IN ('password','google')),
		password_hash       TEXT NOT NULL DEFAULT '',
		reset_token_hash    TEXT NOT NULL DEFAULT '',
		reset_expires_at    TEXT,
		failed_attempts     INTEGER NOT NULL DEFAULT 0,
		disabled            INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		billing_type       TEXT NOT NULL DEFAULT 'hourly'
		                   CHECK(billing_type IN ('hourly','fixed')),
		billing_amount     INTEGER NOT NULL DEFAULT 0 CHECK(billing_amount >= 0),
		estimated_duration INTEGER CHECK(estimated_duration IS NULL OR estimated_duration >= 0),
		active             INTEGER NOT NULL DEFAULT 1,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, title)`,

	// project_id is deliberately not a foreign key: sessions outlive their
	// project and render with an empty title.
	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		project_id  TEXT NOT NULL,
		start_time  TEXT,
		end_time    TEXT,
		duration    INTEGER NOT NULL DEFAULT 0 CHECK(duration >= 0),
		is_manual   INTEGER NOT NULL DEFAULT 0,
		is_billed   INTEGER NOT NULL DEFAULT 0,
		date        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON sessions(user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON sessions(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_id)`,

	// Project tags were added after the first release.
	`ALTER TABLE projects ADD COLUMN tags TEXT NOT NULL DEFAULT ''`,
}
