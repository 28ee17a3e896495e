package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/tx"
)

const defaultCheckInTxTimeout = 5 * time.Second

// lockFacility matches the lock the visit store takes before counting, so
// the store's own lock is a no-op inside this transaction.
const lockFacility = `SELECT pg_advisory_xact_lock(hashtext($1))`

// checkInPostgresTx runs a check-in in one SQL transaction holding the
// facility's advisory lock. Stores join it through the context.
type checkInPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newCheckInPostgresTx(db *sql.DB, timeout time.Duration) *checkInPostgresTx {
	return &checkInPostgresTx{db: db, timeout: timeout}
}

func (t *checkInPostgresTx) RunInTx(ctx context.Context, facilityID id.FacilityID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCheckInTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if _, err := sqlTx.ExecContext(ctx, lockFacility, facilityID.String()); err != nil {
		return fmt.Errorf("lock facility: %w", err)
	}

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
