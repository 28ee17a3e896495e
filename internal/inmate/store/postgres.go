package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"visitgate/internal/inmate/models"
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

const selectInmate = `
	SELECT id, file_number, full_name, location, procedural_status, status, created_at, updated_at
	FROM inmates
`

func (s *PostgresStore) Create(ctx context.Context, i *models.Inmate) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO inmates (id, file_number, full_name, location, procedural_status, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(i.ID),
		i.FileNumber,
		i.FullName,
		i.Location,
		i.ProceduralStatus,
		string(i.Status),
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert inmate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, inmateID id.InmateID) (*models.Inmate, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(inmateID))
}

func (s *PostgresStore) FindByFileNumber(ctx context.Context, fileNumber string) (*models.Inmate, error) {
	return s.findOne(ctx, `WHERE file_number = $1`, models.NormalizeFileNumber(fileNumber))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Inmate, error) {
	i, err := scanInmate(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectInmate+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find inmate: %w", err)
	}
	return i, nil
}

func (s *PostgresStore) Execute(ctx context.Context, inmateID id.InmateID, validate func(*models.Inmate) error, mutate func(*models.Inmate)) (*models.Inmate, error) {
	var out *models.Inmate
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		i, err := scanInmate(q.QueryRowContext(ctx, selectInmate+`WHERE id = $1 FOR UPDATE`, uuid.UUID(inmateID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock inmate: %w", err)
		}
		if err := validate(i); err != nil {
			return err
		}
		mutate(i)
		_, err = q.ExecContext(ctx, `
			UPDATE inmates
			SET full_name = $2, location = $3, procedural_status = $4, status = $5, updated_at = $6
			WHERE id = $1
		`,
			uuid.UUID(i.ID),
			i.FullName,
			i.Location,
			i.ProceduralStatus,
			string(i.Status),
			i.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update inmate: %w", err)
		}
		out = i
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanInmate(row interface{ Scan(dest ...any) error }) (*models.Inmate, error) {
	var (
		i      models.Inmate
		uid    uuid.UUID
		status string
	)
	if err := row.Scan(&uid, &i.FileNumber, &i.FullName, &i.Location, &i.ProceduralStatus, &status, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.ID = id.InmateID(uid)
	i.Status = models.Status(status)
	return &i, nil
}
