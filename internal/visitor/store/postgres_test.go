package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/visitor/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/sentinel"
)

var visitorColumns = []string{"id", "document_number", "full_name", "birth_date", "phone", "email", "address", "status", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock, db
}

func TestPostgresStore_Create(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := &models.Visitor{
		ID:             id.VisitorID(uuid.New()),
		DocumentNumber: "DNI-9",
		FullName:       "Julia Sosa",
		BirthDate:      time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.StatusActive,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}

	t.Run("inserts", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectExec("INSERT INTO visitors").
			WithArgs(uuid.UUID(v.ID), "DNI-9", "Julia Sosa", v.BirthDate, "", "", "", "ACTIVE", ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Create(context.Background(), v))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to ErrAlreadyUsed", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectExec("INSERT INTO visitors").WillReturnError(&pq.Error{Code: "23505"})

		err := store.Create(context.Background(), v)
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})
}

func TestPostgresStore_FindByDocument(t *testing.T) {
	visitorID := uuid.New()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		rows := sqlmock.NewRows(visitorColumns).
			AddRow(visitorID.String(), "DNI-9", "Julia Sosa", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), "", "", "", "INACTIVE", ts, ts)
		mock.ExpectQuery("FROM visitors\\s+WHERE document_number = \\$1").WithArgs("DNI-9").WillReturnRows(rows)

		v, err := store.FindByDocument(context.Background(), " dni-9 ")
		require.NoError(t, err)
		assert.Equal(t, id.VisitorID(visitorID), v.ID)
		assert.Equal(t, models.StatusInactive, v.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectQuery("FROM visitors").WillReturnRows(sqlmock.NewRows(visitorColumns))

		_, err := store.FindByDocument(context.Background(), "DNI-0")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresStore_Execute(t *testing.T) {
	visitorID := uuid.New()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	later := ts.Add(time.Hour)

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(visitorColumns).
			AddRow(visitorID.String(), "DNI-9", "Julia Sosa", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), "", "", "", "ACTIVE", ts, ts)
	}

	t.Run("locks, validates, updates and commits", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(visitorID).WillReturnRows(row())
		mock.ExpectExec("UPDATE visitors").
			WithArgs(visitorID, "Julia Sosa", "", "", "", "INACTIVE", later).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		v, err := store.Execute(context.Background(), id.VisitorID(visitorID),
			func(v *models.Visitor) error { return v.CanDeactivate() },
			func(v *models.Visitor) { v.ApplyDeactivation(later) },
		)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInactive, v.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on validation failure", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(visitorID).WillReturnRows(row())
		mock.ExpectRollback()

		_, err := store.Execute(context.Background(), id.VisitorID(visitorID),
			func(v *models.Visitor) error { return v.CanReactivate() },
			func(v *models.Visitor) { v.ApplyReactivation(later) },
		)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
