package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what repositories run queries against: the pool for plain reads,
// or the transaction handed out by a UnitOfWork.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// UnitOfWork manages transactional boundaries. The callback receives a DBTX
// backed by a *sql.Tx; callers create tx-scoped repositories from it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

// NewSQLiteUnitOfWork creates a UnitOfWork backed by the given *sql.DB.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

type commitHooksKey struct{}

type commitHooks struct {
	fns []func()
}

// AfterCommit registers fn to run once the transaction carried by ctx has
// committed. Outside a transaction fn runs immediately. Hooks of a rolled
// back transaction never run.
func AfterCommit(ctx context.Context, fn func()) {
	if hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn()
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return runInTx(ctx, u.db, func(tx *sql.Tx) DBTX { return tx }, fn)
}

// runInTx is shared with test units of work that wrap the *sql.Tx.
func runInTx(ctx context.Context, db *sql.DB, wrap func(*sql.Tx) DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	hooks := &commitHooks{}
	txCtx := context.WithValue(ctx, commitHooksKey{}, hooks)

	if err := fn(txCtx, wrap(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	for _, h := range hooks.fns {
		h()
	}
	return nil
}

// WithinWrappedTx is WithinTx with a caller-supplied DBTX wrapper around the
// transaction, used to inject faults in rollback tests.
func WithinWrappedTx(ctx context.Context, db *sql.DB, wrap func(DBTX) DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	return runInTx(ctx, db, func(tx *sql.Tx) DBTX { return wrap(tx) }, fn)
}
