package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/alexanderramin/tempo/internal/db"
)

// ErrInjected is returned by FailOnNthExecUoW when Err is unset.
var ErrInjected = errors.New("injected write failure")

// FailOnNthExecUoW runs real transactions but fails the FailOn-th write
// (ExecContext, counted from 1) inside each one, so the transaction rolls
// back. Reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	// Calls counts transactions started.
	Calls atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.Calls.Add(1)
	injected := u.Err
	if injected == nil {
		injected = ErrInjected
	}
	return db.WithinWrappedTx(ctx, u.DB, func(tx db.DBTX) db.DBTX {
		return &countingTx{DBTX: tx, failOn: u.FailOn, err: injected}
	}, fn)
}

type countingTx struct {
	db.DBTX
	writes atomic.Int32
	failOn int32
	err    error
}

func (c *countingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.writes.Add(1) == c.failOn {
		return nil, c.err
	}
	return c.DBTX.ExecContext(ctx, query, args...)
}
