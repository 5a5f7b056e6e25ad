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

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(db db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

const userColumns = `id, name, email, image, provider, disabled, created_at, updated_at`

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User, creds Credentials) error {
	query := `INSERT INTO users (` + userColumns + `, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Name,
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.Image,
		string(u.Provider),
		boolToInt(u.Disabled),
		formatTimestamp(u.CreatedAt),
		formatTimestamp(u.UpdatedAt),
		creds.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`,
		strings.TrimSpace(email))
}

func (r *SQLiteUserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if tokenHash == "" {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, tokenHash)
}

func (r *SQLiteUserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var provider, createdAtStr, updatedAtStr string
	var disabled int

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Image, &provider, &disabled, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Provider = domain.AuthProvider(provider)
	u.Disabled = intToBool(disabled)
	var parseErr error
	if u.CreatedAt, parseErr = parseTimestamp(createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if u.UpdatedAt, parseErr = parseTimestamp(updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &u, nil
}

func (r *SQLiteUserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, image = ?, disabled = ?, updated_at = ? WHERE id = ?`,
		u.Name,
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.Image,
		boolToInt(u.Disabled),
		formatTimestamp(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return expectAffected(res, "updating user")
}

func (r *SQLiteUserRepo) GetCredentials(ctx context.Context, id string) (*Credentials, error) {
	var c Credentials
	var expires sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash, reset_token_hash, reset_expires_at, failed_attempts FROM users WHERE id = ?`, id,
	).Scan(&c.PasswordHash, &c.ResetTokenHash, &expires, &c.FailedAttempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user credentials: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user credentials: %w", err)
	}
	c.ResetExpiresAt = parseNullableTime(expires)
	return &c, nil
}

func (r *SQLiteUserRepo) UpdateCredentials(ctx context.Context, id string, creds Credentials) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token_hash = ?, reset_expires_at = ?, failed_attempts = ? WHERE id = ?`,
		creds.PasswordHash,
		creds.ResetTokenHash,
		nullableTimeToString(creds.ResetExpiresAt),
		creds.FailedAttempts,
		id,
	)
	if err != nil {
		return fmt.Errorf("updating user credentials: %w", err)
	}
	return expectAffected(res, "updating user credentials")
}

func (r *SQLiteUserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return expectAffected(res, "deleting user")
}
