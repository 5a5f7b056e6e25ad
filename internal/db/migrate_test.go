package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_ReplayIsHarmless(t *testing.T) {
	db := openTestDB(t)
	for range 2 {
		require.NoError(t, Migrate(db))
	}
}

func TestMigrate_Schema(t *testing.T) {
	db := openTestDB(t)

	objects := []struct{ kind, name string }{
		{"table", "users"},
		{"table", "projects"},
		{"table", "sessions"},
		{"index", "idx_users_email"},
		{"index", "idx_projects_user"},
		{"index", "idx_sessions_user_date"},
		{"index", "idx_sessions_user_start"},
		{"index", "idx_sessions_project"},
	}
	for _, o := range objects {
		t.Run(o.name, func(t *testing.T) {
			var n int
			err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`, o.kind, o.name).Scan(&n)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}

	var tagsDefault sql.NullString
	err := db.QueryRow(`SELECT dflt_value FROM pragma_table_info('projects') WHERE name = 'tags'`).Scan(&tagsDefault)
	require.NoError(t, err, "projects.tags added by the later migration")
	assert.Equal(t, "''", tagsDefault.String)
}

func TestMigrate_Constraints(t *testing.T) {
	const ts = "2024-05-01T00:00:00.000000000Z"

	tests := []struct {
		name string
		stmt string
		args []any
	}{
		{
			"negative session duration",
			`INSERT INTO sessions (id, user_id, project_id, duration, date, created_at, updated_at) VALUES ('s1', 'u1', 'p1', -1, ?, ?, ?)`,
			[]any{ts, ts, ts},
		},
		{
			"unknown billing type",
			`INSERT INTO projects (id, user_id, title, billing_type, created_at, updated_at) VALUES ('p1', 'u1', 'X', 'weekly', ?, ?)`,
			[]any{ts, ts},
		},
		{
			"negative billing amount",
			`INSERT INTO projects (id, user_id, title, billing_amount, created_at, updated_at) VALUES ('p1', 'u1', 'X', -100, ?, ?)`,
			[]any{ts, ts},
		},
		{
			"e-mail differing only in case",
			`INSERT INTO users (id, email, created_at, updated_at) VALUES ('u2', 'ANA@example.com', ?, ?)`,
			[]any{ts, ts},
		},
		{
			"unknown provider",
			`INSERT INTO users (id, email, provider, created_at, updated_at) VALUES ('u3', 'x@example.com', 'github', ?, ?)`,
			[]any{ts, ts},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			_, err := db.Exec(`INSERT INTO users (id, email, created_at, updated_at) VALUES ('u1', 'ana@example.com', ?, ?)`, ts, ts)
			require.NoError(t, err)

			_, err = db.Exec(tt.stmt, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestMigrate_SessionsOutliveProject(t *testing.T) {
	db := openTestDB(t)
	const ts = "2024-05-01T00:00:00.000000000Z"

	_, err := db.Exec(`INSERT INTO users (id, email, created_at, updated_at) VALUES ('u1', 'ana@example.com', ?, ?)`, ts, ts)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sessions (id, user_id, project_id, duration, date, created_at, updated_at)
		VALUES ('s1', 'u1', 'gone', 60, ?, ?, ?)`, ts, ts, ts)
	require.NoError(t, err, "project_id is not a foreign key")
}
