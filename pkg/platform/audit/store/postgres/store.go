package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "visitgate/pkg/domain"
	audit "visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. Appends join the
// ambient transaction when one is in context so an admission and its audit
// record commit together.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEvents = `
	SELECT category, timestamp, actor_id, subject, action,
		   decision, reason, facility_id, request_id
	FROM audit_events
`

// Append inserts an audit event. Category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		uid := uuid.UUID(event.ActorID)
		actorID = &uid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, actor_id, subject, action,
			decision, reason, facility_id, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		actorID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.FacilityID,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByActor returns events recorded for one operator, newest first.
func (s *Store) ListByActor(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`WHERE actor_id = $1 ORDER BY timestamp DESC`, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListBySubject returns events recorded against one record, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`WHERE subject = $1 ORDER BY timestamp DESC`, subject)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEvents+`ORDER BY timestamp DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			actorID  *uuid.UUID
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&actorID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.FacilityID,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if actorID != nil {
			event.ActorID = id.UserID(*actorID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
