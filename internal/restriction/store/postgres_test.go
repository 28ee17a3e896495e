package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/restriction/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

var restrictionColumns = []string{"id", "visitor_id", "type", "scope", "inmate_id", "motive", "start_date", "end_date",
	"active", "lift_motive", "issued_by", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresStore_Create(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("all-inmates restriction stores a null inmate", func(t *testing.T) {
		store, mock := newMockStore(t)
		r := &models.Restriction{
			ID: id.RestrictionID(uuid.New()), VisitorID: id.VisitorID(uuid.New()),
			Type: models.TypeConduct, Scope: models.ScopeAllInmates,
			Motive: "fight in waiting room", StartDate: start, Active: true,
			IssuedBy: id.UserID(uuid.New()), CreatedAt: ts, UpdatedAt: ts,
		}
		mock.ExpectExec("INSERT INTO restrictions").
			WithArgs(uuid.UUID(r.ID), uuid.UUID(r.VisitorID), "CONDUCT", "ALL_INMATES", nil,
				"fight in waiting room", start, nil, true, "", uuid.UUID(r.IssuedBy), ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Create(context.Background(), r))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("specific-inmate restriction stores the inmate", func(t *testing.T) {
		store, mock := newMockStore(t)
		inmate := uuid.New()
		end := start.AddDate(0, 1, 0)
		r := &models.Restriction{
			ID: id.RestrictionID(uuid.New()), VisitorID: id.VisitorID(uuid.New()),
			Type: models.TypeJudicial, Scope: models.ScopeSpecificInmate, InmateID: id.InmateID(inmate),
			Motive: "court order 2231/26", StartDate: start, EndDate: &end, Active: true,
			IssuedBy: id.UserID(uuid.New()), CreatedAt: ts, UpdatedAt: ts,
		}
		mock.ExpectExec("INSERT INTO restrictions").
			WithArgs(uuid.UUID(r.ID), uuid.UUID(r.VisitorID), "JUDICIAL", "SPECIFIC_INMATE", inmate,
				"court order 2231/26", start, end, true, "", uuid.UUID(r.IssuedBy), ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Create(context.Background(), r))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_ListByVisitor(t *testing.T) {
	store, mock := newMockStore(t)
	visitor, inmate := uuid.New(), uuid.New()
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	ts := start.Add(time.Hour)

	rows := sqlmock.NewRows(restrictionColumns).
		AddRow(uuid.NewString(), visitor.String(), "JUDICIAL", "SPECIFIC_INMATE", inmate.String(),
			"court order 2231/26", start, nil, true, "", uuid.NewString(), ts, ts).
		AddRow(uuid.NewString(), visitor.String(), "CONDUCT", "ALL_INMATES", nil,
			"fight in waiting room", start, start.AddDate(0, 0, 7), false, "appeal granted", uuid.NewString(), ts, ts)
	mock.ExpectQuery("WHERE visitor_id = \\$1").WithArgs(visitor).WillReturnRows(rows)

	out, err := store.ListByVisitor(context.Background(), id.VisitorID(visitor))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, id.InmateID(inmate), out[0].InmateID)
	assert.Nil(t, out[0].EndDate)
	assert.True(t, out[1].InmateID.IsNil())
	require.NotNil(t, out[1].EndDate)
	assert.Equal(t, start.AddDate(0, 0, 7), *out[1].EndDate)
	assert.False(t, out[1].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Execute(t *testing.T) {
	rid, visitor := uuid.New(), uuid.New()
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	ts := start.Add(time.Hour)
	later := ts.Add(time.Hour)

	t.Run("lifts under a row lock", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(rid).WillReturnRows(sqlmock.NewRows(restrictionColumns).
			AddRow(rid.String(), visitor.String(), "CONDUCT", "ALL_INMATES", nil,
				"fight in waiting room", start, nil, true, "", uuid.NewString(), ts, ts))
		mock.ExpectExec("UPDATE restrictions").
			WithArgs(rid, nil, false, "appeal granted", later).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		r, err := store.Execute(context.Background(), id.RestrictionID(rid),
			func(r *models.Restriction) error { return r.CanLift("appeal granted") },
			func(r *models.Restriction) { r.ApplyLift("appeal granted", later) },
		)
		require.NoError(t, err)
		assert.False(t, r.Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs(rid).WillReturnRows(sqlmock.NewRows(restrictionColumns))
		mock.ExpectRollback()

		_, err := store.Execute(context.Background(), id.RestrictionID(rid),
			func(*models.Restriction) error { return nil },
			func(*models.Restriction) {},
		)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
