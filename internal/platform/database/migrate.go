package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id UUID PRIMARY KEY,
		document_number TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		birth_date DATE NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_full_name ON visitors (lower(full_name))`,

	`CREATE TABLE IF NOT EXISTS inmates (
		id UUID PRIMARY KEY,
		file_number TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		procedural_status TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS authorizations (
		id UUID PRIMARY KEY,
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		inmate_id UUID NOT NULL REFERENCES inmates(id),
		relationship TEXT NOT NULL,
		expires_at TIMESTAMPTZ NULL,
		status TEXT NOT NULL,
		status_reason TEXT NOT NULL DEFAULT '',
		immediate BOOLEAN NOT NULL DEFAULT FALSE,
		issued_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT authorizations_pair_unique UNIQUE (visitor_id, inmate_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authorizations_inmate ON authorizations (inmate_id)`,

	`CREATE TABLE IF NOT EXISTS restrictions (
		id UUID PRIMARY KEY,
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		type TEXT NOT NULL,
		scope TEXT NOT NULL,
		inmate_id UUID NULL REFERENCES inmates(id),
		motive TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		lift_motive TEXT NOT NULL DEFAULT '',
		issued_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT restrictions_scope_inmate CHECK ((scope = 'SPECIFIC_INMATE') = (inmate_id IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_restrictions_visitor ON restrictions (visitor_id)`,

	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY,
		visitor_id UUID NOT NULL REFERENCES visitors(id),
		inmate_id UUID NOT NULL REFERENCES inmates(id),
		facility_id UUID NOT NULL,
		authorization_id UUID NULL,
		scheduled_for DATE NOT NULL,
		entry_at TIMESTAMPTZ NULL,
		exit_at TIMESTAMPTZ NULL,
		state TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		checked_in_by UUID NULL,
		checked_out_by UUID NULL,
		cancel_motive TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT visits_in_progress_has_entry CHECK (state <> 'IN_PROGRESS' OR entry_at IS NOT NULL)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_visits_one_in_progress_per_visitor
		ON visits (visitor_id) WHERE state = 'IN_PROGRESS'`,
	`CREATE INDEX IF NOT EXISTS idx_visits_facility_state ON visits (facility_id, state)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_inmate ON visits (inmate_id)`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		facility_id UUID NULL,
		credential_hash TEXT NOT NULL DEFAULT '',
		last_access_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (lower(username))`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id UUID PRIMARY KEY,
		category TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		actor_id UUID NULL,
		subject TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		decision TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		facility_id TEXT NOT NULL DEFAULT '',
		request_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_actor ON audit_events (actor_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_subject ON audit_events (subject, timestamp DESC)`,
}

// Tables lists every table the schema creates, children first.
var Tables = []string{"audit_events", "visits", "restrictions", "authorizations", "users", "inmates", "visitors"}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
