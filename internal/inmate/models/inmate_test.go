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

func TestInmate_Availability(t *testing.T) {
	now := time.Now()
	i, err := NewInmate(id.InmateID(uuid.New()), " l-100 ", "Jorge Paz", "Pabellón 3", "procesado", now)
	require.NoError(t, err)
	assert.Equal(t, "L-100", i.FileNumber)
	assert.True(t, i.IsAvailableForVisits())

	for _, st := range []Status{StatusTransferred, StatusHospitalized, StatusIsolated, StatusDischarged} {
		i.Status = st
		assert.False(t, i.IsAvailableForVisits(), st)
	}
}

func TestInmate_StatusChanges(t *testing.T) {
	now := time.Now()
	i, err := NewInmate(id.InmateID(uuid.New()), "L-1", "Jorge Paz", "", "", now)
	require.NoError(t, err)

	assert.True(t, dErrors.HasCode(i.CanChangeStatus(StatusActive), dErrors.CodeInvalidState))
	assert.True(t, dErrors.HasCode(i.CanChangeStatus("PAROLED"), dErrors.CodeInvalidInput))

	require.NoError(t, i.CanChangeStatus(StatusIsolated))
	i.ApplyStatus(StatusIsolated, now)
	require.NoError(t, i.CanChangeStatus(StatusDischarged))
	i.ApplyStatus(StatusDischarged, now)

	assert.True(t, dErrors.HasCode(i.CanChangeStatus(StatusActive), dErrors.CodeInvalidState))
	assert.True(t, dErrors.HasCode(i.CanRelocate("Pabellón 1"), dErrors.CodeInvalidState))
}

func TestNewInmate_Validation(t *testing.T) {
	_, err := NewInmate(id.InmateID(uuid.New()), "", "Name", "", "", time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = NewInmate(id.InmateID(uuid.New()), "L-2", " ", "", "", time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
