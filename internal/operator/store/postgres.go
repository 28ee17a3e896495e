package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/operator/models"
	"visitgate/internal/platform/database"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectUser = `
	SELECT id, username, full_name, role, active, facility_id, credential_hash,
		   last_access_at, created_at, updated_at
	FROM users
`

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	var facility *uuid.UUID
	if !u.FacilityID.IsNil() {
		f := uuid.UUID(u.FacilityID)
		facility = &f
	}
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, username, full_name, role, active, facility_id, credential_hash,
			last_access_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(u.ID),
		u.Username,
		u.FullName,
		string(u.Role),
		u.Active,
		facility,
		u.CredentialHash,
		u.LastAccessAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, `WHERE lower(username) = $1`, models.NormalizeUsername(username))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectUser+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) TouchLastAccess(ctx context.Context, userID id.UserID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_access_at = $2 WHERE id = $1`, uuid.UUID(userID), at)
	if err != nil {
		return fmt.Errorf("touch user last access: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch user rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	var out *models.User
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		u, err := scanUser(q.QueryRowContext(ctx, selectUser+`WHERE id = $1 FOR UPDATE`, uuid.UUID(userID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}
		if err := validate(u); err != nil {
			return err
		}
		mutate(u)
		_, err = q.ExecContext(ctx, `
			UPDATE users SET full_name = $2, role = $3, active = $4, updated_at = $5 WHERE id = $1
		`, uuid.UUID(u.ID), u.FullName, string(u.Role), u.Active, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		u          models.User
		uid        uuid.UUID
		facilityID uuid.NullUUID
		role       string
		lastAccess sql.NullTime
	)
	err := row.Scan(&uid, &u.Username, &u.FullName, &role, &u.Active, &facilityID,
		&u.CredentialHash, &lastAccess, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.ID = id.UserID(uid)
	u.Role = models.Role(role)
	if facilityID.Valid {
		u.FacilityID = id.FacilityID(facilityID.UUID)
	}
	if lastAccess.Valid {
		t := lastAccess.Time
		u.LastAccessAt = &t
	}
	return &u, nil
}
