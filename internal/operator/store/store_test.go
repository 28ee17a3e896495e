package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/operator/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

func TestInMemory_UsernameIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	u, err := models.NewUser(id.UserID(uuid.New()), "Guard", "Guard", models.RoleOperator, id.FacilityID{}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, u))

	found, err := s.FindByUsername(ctx, "GUARD")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	other, _ := models.NewUser(id.UserID(uuid.New()), "guard", "Other", models.RoleOperator, id.FacilityID{}, time.Now())
	assert.ErrorIs(t, s.Create(ctx, other), sentinel.ErrAlreadyUsed)

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchLastAccess(ctx, u.ID, at))
	found, _ = s.FindByID(ctx, u.ID)
	require.NotNil(t, found.LastAccessAt)
	assert.Equal(t, at, *found.LastAccessAt)

	assert.ErrorIs(t, s.TouchLastAccess(ctx, id.UserID(uuid.New()), at), sentinel.ErrNotFound)
}

func TestPostgresStore_FindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("WHERE lower\\(username\\) = \\$1").
		WithArgs("sup.ana").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "full_name", "role", "active", "facility_id", "credential_hash", "last_access_at", "created_at", "updated_at"}).
			AddRow(userID.String(), "sup.ana", "Ana", "SUPERVISOR", true, nil, "", nil, ts, ts))

	u, err := NewPostgres(db).FindByUsername(context.Background(), " Sup.Ana ")
	require.NoError(t, err)
	assert.Equal(t, id.UserID(userID), u.ID)
	assert.True(t, u.CanGrantImmediate())
	assert.Nil(t, u.LastAccessAt)
	assert.True(t, u.FacilityID.IsNil())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_TouchLastAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE users SET last_access_at").WithArgs(userID, at).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewPostgres(db).TouchLastAccess(context.Background(), id.UserID(userID), at))

	mock.ExpectExec("UPDATE users SET last_access_at").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, NewPostgres(db).TouchLastAccess(context.Background(), id.UserID(userID), at), sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
