package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"visitgate/internal/platform/database"
	"visitgate/internal/visitor/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/tx"
)

// PostgresStore persists visitors in the visitors table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectVisitor = `
	SELECT id, document_number, full_name, birth_date, phone, email, address,
		   status, created_at, updated_at
	FROM visitors
`

func (s *PostgresStore) Create(ctx context.Context, v *models.Visitor) error {
	query := `
		INSERT INTO visitors (id, document_number, full_name, birth_date, phone, email, address,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(v.ID),
		v.DocumentNumber,
		v.FullName,
		v.BirthDate,
		v.Contact.Phone,
		v.Contact.Email,
		v.Contact.Address,
		string(v.Status),
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	v, err := scanVisitor(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectVisitor+`WHERE id = $1`, uuid.UUID(visitorID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by id: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) FindByDocument(ctx context.Context, document string) (*models.Visitor, error) {
	v, err := scanVisitor(tx.Executor(ctx, s.db).QueryRowContext(ctx, selectVisitor+`WHERE document_number = $1`, models.NormalizeDocument(document)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor by document: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) Search(ctx context.Context, fragment string, limit int) ([]*models.Visitor, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		selectVisitor+`WHERE lower(full_name) LIKE '%' || lower($1) || '%' ORDER BY full_name LIMIT $2`,
		fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("search visitors: %w", err)
	}
	defer rows.Close()

	var out []*models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitors: %w", err)
	}
	return out, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the whole
// validate-mutate-write sequence.
func (s *PostgresStore) Execute(ctx context.Context, visitorID id.VisitorID, validate func(*models.Visitor) error, mutate func(*models.Visitor)) (*models.Visitor, error) {
	var out *models.Visitor
	err := tx.Run(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		v, err := scanVisitor(q.QueryRowContext(ctx, selectVisitor+`WHERE id = $1 FOR UPDATE`, uuid.UUID(visitorID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock visitor: %w", err)
		}
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)

		_, err = q.ExecContext(ctx, `
			UPDATE visitors
			SET full_name = $2, phone = $3, email = $4, address = $5, status = $6, updated_at = $7
			WHERE id = $1
		`,
			uuid.UUID(v.ID),
			v.FullName,
			v.Contact.Phone,
			v.Contact.Email,
			v.Contact.Address,
			string(v.Status),
			v.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update visitor: %w", err)
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*models.Visitor, error) {
	var (
		v      models.Visitor
		uid    uuid.UUID
		status string
	)
	err := row.Scan(
		&uid,
		&v.DocumentNumber,
		&v.FullName,
		&v.BirthDate,
		&v.Contact.Phone,
		&v.Contact.Email,
		&v.Contact.Address,
		&status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ID = id.VisitorID(uid)
	v.Status = models.Status(status)
	return &v, nil
}
