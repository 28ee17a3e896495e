package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/authorization/models"
	"visitgate/internal/platform/database"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/tx"
)

// PostgresStore persists authorizations. The (visitor_id, inmate_id) pair is
// unique at the schema level.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectAuthorization = `
	SELECT id, visitor_id, inmate_id, relationship, expires_at, status, status_reason,
		   immediate, issued_by, created_at, updated_at
	FROM authorizations
`

func (s *PostgresStore) Create(ctx context.Context, a *models.Authorization) error {
	query := `
		INSERT INTO authorizations (id, visitor_id, inmate_id, relationship, expires_at, status,
			status_reason, immediate, issued_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(a.ID),
		uuid.UUID(a.VisitorID),
		uuid.UUID(a.InmateID),
		a.Relationship,
		nullTime(a.ExpiresAt),
		string(a.Status),
		a.StatusReason,
		a.Immediate,
		uuid.UUID(a.IssuedBy),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert authorization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, authID id.AuthorizationID) (*models.Authorization, error) {
	a, err := scanAuthorization(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectAuthorization+`WHERE id = $1`, uuid.UUID(authID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find authorization by id: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindByPair(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID) (*models.Authorization, error) {
	a, err := scanAuthorization(tx.Executor(ctx, s.db).QueryRowContext(ctx,
		selectAuthorization+`WHERE visitor_id = $1 AND inmate_id = $2`,
		uuid.UUID(visitorID), uuid.UUID(inmateID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find authorization by pair: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Authorization, error) {
	return s.list(ctx, selectAuthorization+`WHERE visitor_id = $1 ORDER BY created_at`, uuid.UUID(visitorID))
}

func (s *PostgresStore) ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*models.Authorization, error) {
	return s.list(ctx, selectAuthorization+`WHERE inmate_id = $1 ORDER BY created_at`, uuid.UUID(inmateID))
}

func (s *PostgresStore) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.Authorization, error) {
	return s.list(ctx, selectAuthorization+`
		WHERE status = 'VALID' AND expires_at IS NOT NULL AND expires_at BETWEEN $1 AND $2
		ORDER BY expires_at`, from, to)
}

// Replace writes every mutable column of a back to its row.
func (s *PostgresStore) Replace(ctx context.Context, a *models.Authorization) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, updateAuthorization, updateArgs(a)...)
	if err != nil {
		return fmt.Errorf("replace authorization: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, authID id.AuthorizationID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM authorizations WHERE id = $1`, uuid.UUID(authID))
	if err != nil {
		return fmt.Errorf("delete authorization: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Execute(ctx context.Context, authID id.AuthorizationID, validate func(*models.Authorization) error, mutate func(*models.Authorization)) (*models.Authorization, error) {
	var out *models.Authorization
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		a, err := scanAuthorization(q.QueryRowContext(ctx, selectAuthorization+`WHERE id = $1 FOR UPDATE`, uuid.UUID(authID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock authorization: %w", err)
		}
		if err := validate(a); err != nil {
			return err
		}
		mutate(a)
		if _, err := q.ExecContext(ctx, updateAuthorization, updateArgs(a)...); err != nil {
			return fmt.Errorf("update authorization: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const updateAuthorization = `
	UPDATE authorizations
	SET relationship = $2, expires_at = $3, status = $4, status_reason = $5,
		immediate = $6, issued_by = $7, updated_at = $8
	WHERE id = $1
`

func updateArgs(a *models.Authorization) []any {
	return []any{
		uuid.UUID(a.ID),
		a.Relationship,
		nullTime(a.ExpiresAt),
		string(a.Status),
		a.StatusReason,
		a.Immediate,
		uuid.UUID(a.IssuedBy),
		a.UpdatedAt,
	}
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Authorization, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorizations: %w", err)
	}
	defer rows.Close()

	var out []*models.Authorization
	for rows.Next() {
		a, err := scanAuthorization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan authorization: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authorizations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthorization(row rowScanner) (*models.Authorization, error) {
	var (
		a                       models.Authorization
		authID, visitor, inmate uuid.UUID
		issuedBy                uuid.UUID
		expiresAt               sql.NullTime
		status                  string
	)
	err := row.Scan(
		&authID,
		&visitor,
		&inmate,
		&a.Relationship,
		&expiresAt,
		&status,
		&a.StatusReason,
		&a.Immediate,
		&issuedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ID = id.AuthorizationID(authID)
	a.VisitorID = id.VisitorID(visitor)
	a.InmateID = id.InmateID(inmate)
	a.IssuedBy = id.UserID(issuedBy)
	a.Status = models.Status(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		a.ExpiresAt = &t
	}
	return &a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
