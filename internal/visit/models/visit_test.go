package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

var now = time.Date(2026, 3, 9, 10, 15, 0, 0, time.UTC)

func newVisit() *Visit {
	return NewVisit(id.VisitID(uuid.New()), id.VisitorID(uuid.New()), id.InmateID(uuid.New()), id.FacilityID(uuid.New()), now, now)
}

func TestVisit_CheckInThenCheckOut(t *testing.T) {
	v := newVisit()
	op := id.UserID(uuid.New())
	auth := id.AuthorizationID(uuid.New())

	assert.Equal(t, StateScheduled, v.State)
	assert.Equal(t, time.Duration(0), v.Duration(now))

	require.NoError(t, v.CheckIn(op, auth, now))
	assert.Equal(t, StateInProgress, v.State)
	require.NotNil(t, v.EntryAt)
	assert.Equal(t, now, *v.EntryAt)
	assert.Equal(t, auth, v.AuthorizationID)
	assert.Equal(t, 20*time.Minute, v.Duration(now.Add(20*time.Minute)))

	assert.True(t, dErrors.HasCode(v.CheckIn(op, auth, now), dErrors.CodeInvalidState))

	require.NoError(t, v.CheckOut(op, "brought documents", now))
	assert.Equal(t, StateFinished, v.State)
	assert.False(t, v.ExitAt.Before(*v.EntryAt))
	assert.GreaterOrEqual(t, v.Duration(now.Add(time.Hour)), time.Duration(0))
	assert.Equal(t, "brought documents", v.Notes)

	assert.True(t, dErrors.HasCode(v.CheckOut(op, "", now), dErrors.CodeInvalidState))
}

func TestVisit_CheckOutClampsClockSkew(t *testing.T) {
	v := newVisit()
	require.NoError(t, v.CheckIn(id.UserID{}, id.AuthorizationID{}, now))
	require.NoError(t, v.CheckOut(id.UserID{}, "", now.Add(-time.Second)))
	assert.Equal(t, *v.EntryAt, *v.ExitAt)
	assert.Equal(t, time.Duration(0), v.Duration(now))
}

func TestVisit_CheckOutRequiresInProgress(t *testing.T) {
	v := newVisit()
	assert.True(t, dErrors.HasCode(v.CheckOut(id.UserID{}, "", now), dErrors.CodeInvalidState))
}

func TestVisit_Cancel(t *testing.T) {
	t.Run("blank motive", func(t *testing.T) {
		v := newVisit()
		assert.True(t, dErrors.HasCode(v.Cancel("  ", now), dErrors.CodeInvalidInput))
		assert.Equal(t, StateScheduled, v.State)
	})

	t.Run("from in progress", func(t *testing.T) {
		v := newVisit()
		require.NoError(t, v.CheckIn(id.UserID{}, id.AuthorizationID{}, now))
		require.NoError(t, v.Cancel("medical emergency", now))
		assert.Equal(t, StateCancelled, v.State)
		assert.Equal(t, "medical emergency", v.CancelMotive)
		assert.Equal(t, time.Duration(0), v.Duration(now.Add(time.Hour)))
	})

	t.Run("second cancel fails", func(t *testing.T) {
		v := newVisit()
		require.NoError(t, v.Cancel("visitor did not show", now))
		assert.True(t, dErrors.HasCode(v.Cancel("again", now), dErrors.CodeInvalidState))
	})

	t.Run("finished visit cannot be cancelled", func(t *testing.T) {
		v := newVisit()
		require.NoError(t, v.CheckIn(id.UserID{}, id.AuthorizationID{}, now))
		require.NoError(t, v.CheckOut(id.UserID{}, "", now))
		assert.True(t, dErrors.HasCode(v.Cancel("late", now), dErrors.CodeInvalidState))
	})
}

func TestVisit_AppendNotes(t *testing.T) {
	v := newVisit()
	v.AppendNotes("first")
	v.AppendNotes("   ")
	v.AppendNotes("second")
	assert.Equal(t, "first\nsecond", v.Notes)
}
