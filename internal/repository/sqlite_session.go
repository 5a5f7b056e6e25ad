package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(db db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

const sessionColumns = `id, user_id, project_id, start_time, end_time, duration, is_manual, is_billed,
	date, created_at, updated_at`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.ProjectID,
		nullableTimeToString(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Duration,
		boolToInt(s.IsManual),
		boolToInt(s.IsBilled),
		formatTimestamp(s.Date),
		formatTimestamp(s.CreatedAt),
		formatTimestamp(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, userID, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND user_id = ?`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return s, nil
}

// List returns sessions matching q, most recently started first. Manual
// entries without a start time sort by their date.
func (r *SQLiteSessionRepo) List(ctx context.Context, q SessionQuery) ([]*domain.Session, error) {
	conds := []string{"user_id = ?"}
	args := []any{q.UserID}

	if q.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, q.ProjectID)
	}
	if q.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, formatTimestamp(*q.From))
	}
	if q.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, formatTimestamp(*q.To))
	}
	switch q.Billed {
	case domain.BilledOnly:
		conds = append(conds, "is_billed = 1")
	case domain.BilledUnbilled:
		conds = append(conds, "is_billed = 0")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY COALESCE(start_time, date) DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.Session) error {
	query := `UPDATE sessions SET project_id = ?, start_time = ?, end_time = ?, duration = ?,
		is_manual = ?, is_billed = ?, date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.ProjectID,
		nullableTimeToString(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Duration,
		boolToInt(s.IsManual),
		boolToInt(s.IsBilled),
		formatTimestamp(s.Date),
		formatTimestamp(s.UpdatedAt),
		s.ID,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return expectAffected(res, "updating session")
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return expectAffected(res, "deleting session")
}

func (r *SQLiteSessionRepo) CountByProject(ctx context.Context, userID, projectID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND project_id = ?`, userID, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var startStr, endStr sql.NullString
	var dateStr, createdAtStr, updatedAtStr string
	var isManual, isBilled int

	err := row.Scan(
		&s.ID, &s.UserID, &s.ProjectID, &startStr, &endStr, &s.Duration,
		&isManual, &isBilled, &dateStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	s.StartTime = parseNullableTime(startStr)
	s.EndTime = parseNullableTime(endStr)
	s.IsManual = intToBool(isManual)
	s.IsBilled = intToBool(isBilled)

	var parseErr error
	if s.Date, parseErr = parseTimestamp(dateStr); parseErr != nil {
		return nil, fmt.Errorf("parsing date: %w", parseErr)
	}
	if s.CreatedAt, parseErr = parseTimestamp(createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if s.UpdatedAt, parseErr = parseTimestamp(updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &s, nil
}
