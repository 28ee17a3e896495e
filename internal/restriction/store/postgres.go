package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/platform/database"
	"visitgate/internal/restriction/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/tx"
)

// PostgresStore persists restrictions. The schema rejects a SPECIFIC_INMATE
// row without an inmate and an ALL_INMATES row with one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectRestriction = `
	SELECT id, visitor_id, type, scope, inmate_id, motive, start_date, end_date,
		   active, lift_motive, issued_by, created_at, updated_at
	FROM restrictions
`

func (s *PostgresStore) Create(ctx context.Context, r *models.Restriction) error {
	query := `
		INSERT INTO restrictions (id, visitor_id, type, scope, inmate_id, motive, start_date, end_date,
			active, lift_motive, issued_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.VisitorID),
		string(r.Type),
		string(r.Scope),
		nullInmate(r.InmateID),
		r.Motive,
		r.StartDate,
		nullTime(r.EndDate),
		r.Active,
		r.LiftMotive,
		uuid.UUID(r.IssuedBy),
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert restriction: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, restrictionID id.RestrictionID) (*models.Restriction, error) {
	r, err := scanRestriction(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectRestriction+`WHERE id = $1`, uuid.UUID(restrictionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find restriction by id: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Restriction, error) {
	return s.list(ctx, selectRestriction+`WHERE visitor_id = $1 ORDER BY start_date DESC, created_at`, uuid.UUID(visitorID))
}

func (s *PostgresStore) ListFlaggedActive(ctx context.Context) ([]*models.Restriction, error) {
	return s.list(ctx, selectRestriction+`WHERE active ORDER BY start_date DESC, created_at`)
}

func (s *PostgresStore) Execute(ctx context.Context, restrictionID id.RestrictionID, validate func(*models.Restriction) error, mutate func(*models.Restriction)) (*models.Restriction, error) {
	var out *models.Restriction
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		r, err := scanRestriction(q.QueryRowContext(ctx, selectRestriction+`WHERE id = $1 FOR UPDATE`, uuid.UUID(restrictionID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock restriction: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)

		_, err = q.ExecContext(ctx, `
			UPDATE restrictions
			SET end_date = $2, active = $3, lift_motive = $4, updated_at = $5
			WHERE id = $1
		`,
			uuid.UUID(r.ID),
			nullTime(r.EndDate),
			r.Active,
			r.LiftMotive,
			r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update restriction: %w", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Restriction, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list restrictions: %w", err)
	}
	defer rows.Close()

	var out []*models.Restriction
	for rows.Next() {
		r, err := scanRestriction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restriction: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restrictions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestriction(row rowScanner) (*models.Restriction, error) {
	var (
		r            models.Restriction
		rid, visitor uuid.UUID
		issuedBy     uuid.UUID
		inmate       uuid.NullUUID
		endDate      sql.NullTime
		typ, scope   string
	)
	err := row.Scan(
		&rid,
		&visitor,
		&typ,
		&scope,
		&inmate,
		&r.Motive,
		&r.StartDate,
		&endDate,
		&r.Active,
		&r.LiftMotive,
		&issuedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = id.RestrictionID(rid)
	r.VisitorID = id.VisitorID(visitor)
	r.IssuedBy = id.UserID(issuedBy)
	r.Type = models.Type(typ)
	r.Scope = models.Scope(scope)
	r.StartDate = r.StartDate.UTC()
	if inmate.Valid {
		r.InmateID = id.InmateID(inmate.UUID)
	}
	if endDate.Valid {
		t := endDate.Time.UTC()
		r.EndDate = &t
	}
	return &r, nil
}

func nullInmate(inmateID id.InmateID) uuid.NullUUID {
	if inmateID.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(inmateID), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
