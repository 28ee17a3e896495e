package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/platform/database"
	"visitgate/internal/visit/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/tx"
)

// PostgresStore persists visits. A partial unique index keeps one
// IN_PROGRESS visit per visitor; capacity checks serialize per facility on a
// transaction-scoped advisory lock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectVisit = `
	SELECT id, visitor_id, inmate_id, facility_id, authorization_id, scheduled_for, entry_at, exit_at,
		   state, notes, checked_in_by, checked_out_by, cancel_motive, created_at, updated_at
	FROM visits
`

const insertVisit = `
	INSERT INTO visits (id, visitor_id, inmate_id, facility_id, authorization_id, scheduled_for,
		entry_at, exit_at, state, notes, checked_in_by, checked_out_by, cancel_motive, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

const updateVisit = `
	UPDATE visits
	SET authorization_id = $2, entry_at = $3, exit_at = $4, state = $5, notes = $6,
		checked_in_by = $7, checked_out_by = $8, cancel_motive = $9, updated_at = $10
	WHERE id = $1
`

const lockFacility = `SELECT pg_advisory_xact_lock(hashtext($1))`

const countInProgress = `SELECT COUNT(*) FROM visits WHERE facility_id = $1 AND state = 'IN_PROGRESS'`

func (s *PostgresStore) Insert(ctx context.Context, v *models.Visit) error {
	if _, err := tx.Executor(ctx, s.db).ExecContext(ctx, insertVisit, insertArgs(v)...); err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// InsertIfUnderCapacity locks the facility, counts visits in progress and
// inserts v only while the count is below capacity.
func (s *PostgresStore) InsertIfUnderCapacity(ctx context.Context, v *models.Visit, capacity int) error {
	return tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		if err := s.reserveSlot(ctx, q, v.FacilityID, capacity); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, insertVisit, insertArgs(v)...); err != nil {
			if database.IsUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert visit: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ExecuteIfUnderCapacity(ctx context.Context, visitID id.VisitID, capacity int, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	var out *models.Visit
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		v, err := lockVisit(ctx, q, visitID)
		if err != nil {
			return err
		}
		if err := validate(v); err != nil {
			return err
		}
		if err := s.reserveSlot(ctx, q, v.FacilityID, capacity); err != nil {
			return err
		}
		mutate(v)
		if err := writeVisit(ctx, q, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Execute(ctx context.Context, visitID id.VisitID, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	var out *models.Visit
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		v, err := lockVisit(ctx, q, visitID)
		if err != nil {
			return err
		}
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)
		if err := writeVisit(ctx, q, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, visitID id.VisitID) (*models.Visit, error) {
	v, err := scanVisit(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectVisit+`WHERE id = $1`, uuid.UUID(visitID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visit by id: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) CountInProgress(ctx context.Context, facilityID id.FacilityID) (int, error) {
	var n int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, countInProgress, uuid.UUID(facilityID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count visits in progress: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListInProgress(ctx context.Context, facilityID id.FacilityID) ([]*models.Visit, error) {
	return s.list(ctx, selectVisit+`WHERE facility_id = $1 AND state = 'IN_PROGRESS' ORDER BY entry_at`, uuid.UUID(facilityID))
}

func (s *PostgresStore) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Visit, error) {
	return s.list(ctx, selectVisit+`WHERE visitor_id = $1 ORDER BY scheduled_for DESC, created_at DESC`, uuid.UUID(visitorID))
}

func (s *PostgresStore) ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*models.Visit, error) {
	return s.list(ctx, selectVisit+`WHERE inmate_id = $1 ORDER BY scheduled_for DESC, created_at DESC`, uuid.UUID(inmateID))
}

func (s *PostgresStore) ListOn(ctx context.Context, facilityID id.FacilityID, day time.Time) ([]*models.Visit, error) {
	return s.list(ctx, selectVisit+`WHERE facility_id = $1 AND scheduled_for = $2 ORDER BY created_at`,
		uuid.UUID(facilityID), id.CalendarDate(day))
}

func (s *PostgresStore) reserveSlot(ctx context.Context, q tx.DBTX, facilityID id.FacilityID, capacity int) error {
	if _, err := q.ExecContext(ctx, lockFacility, facilityID.String()); err != nil {
		return fmt.Errorf("lock facility: %w", err)
	}
	var n int
	if err := q.QueryRowContext(ctx, countInProgress, uuid.UUID(facilityID)).Scan(&n); err != nil {
		return fmt.Errorf("count visits in progress: %w", err)
	}
	if n >= capacity {
		return sentinel.ErrCapacityReached
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Visit, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []*models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return out, nil
}

func lockVisit(ctx context.Context, q tx.DBTX, visitID id.VisitID) (*models.Visit, error) {
	v, err := scanVisit(q.QueryRowContext(ctx, selectVisit+`WHERE id = $1 FOR UPDATE`, uuid.UUID(visitID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock visit: %w", err)
	}
	return v, nil
}

func writeVisit(ctx context.Context, q tx.DBTX, v *models.Visit) error {
	_, err := q.ExecContext(ctx, updateVisit,
		uuid.UUID(v.ID),
		nullUUID(uuid.UUID(v.AuthorizationID)),
		nullTime(v.EntryAt),
		nullTime(v.ExitAt),
		string(v.State),
		v.Notes,
		nullUUID(uuid.UUID(v.CheckedInBy)),
		nullUUID(uuid.UUID(v.CheckedOutBy)),
		v.CancelMotive,
		v.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update visit: %w", err)
	}
	return nil
}

func insertArgs(v *models.Visit) []any {
	return []any{
		uuid.UUID(v.ID),
		uuid.UUID(v.VisitorID),
		uuid.UUID(v.InmateID),
		uuid.UUID(v.FacilityID),
		nullUUID(uuid.UUID(v.AuthorizationID)),
		v.ScheduledFor,
		nullTime(v.EntryAt),
		nullTime(v.ExitAt),
		string(v.State),
		v.Notes,
		nullUUID(uuid.UUID(v.CheckedInBy)),
		nullUUID(uuid.UUID(v.CheckedOutBy)),
		v.CancelMotive,
		v.CreatedAt,
		v.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (*models.Visit, error) {
	var (
		v                           models.Visit
		vid, visitor, inmate, fac   uuid.UUID
		authID, checkedIn, checkOut uuid.NullUUID
		entryAt, exitAt             sql.NullTime
		state                       string
	)
	err := row.Scan(
		&vid,
		&visitor,
		&inmate,
		&fac,
		&authID,
		&v.ScheduledFor,
		&entryAt,
		&exitAt,
		&state,
		&v.Notes,
		&checkedIn,
		&checkOut,
		&v.CancelMotive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ID = id.VisitID(vid)
	v.VisitorID = id.VisitorID(visitor)
	v.InmateID = id.InmateID(inmate)
	v.FacilityID = id.FacilityID(fac)
	v.ScheduledFor = id.CalendarDate(v.ScheduledFor)
	v.State = models.State(state)
	if authID.Valid {
		v.AuthorizationID = id.AuthorizationID(authID.UUID)
	}
	if checkedIn.Valid {
		v.CheckedInBy = id.UserID(checkedIn.UUID)
	}
	if checkOut.Valid {
		v.CheckedOutBy = id.UserID(checkOut.UUID)
	}
	if entryAt.Valid {
		t := entryAt.Time
		v.EntryAt = &t
	}
	if exitAt.Valid {
		t := exitAt.Time
		v.ExitAt = &t
	}
	return &v, nil
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
