package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitgate/internal/inmate/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

func TestInMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	i, err := models.NewInmate(id.InmateID(uuid.New()), "L-77", "Raúl Vera", "Pabellón 2", "condenado", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, i))

	found, err := s.FindByFileNumber(ctx, "l-77")
	require.NoError(t, err)
	assert.Equal(t, i.ID, found.ID)

	dup, _ := models.NewInmate(id.InmateID(uuid.New()), "L-77", "Other", "", "", time.Now())
	assert.ErrorIs(t, s.Create(ctx, dup), sentinel.ErrAlreadyUsed)

	_, err = s.FindByID(ctx, id.InmateID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	updated, err := s.Execute(ctx, i.ID,
		func(i *models.Inmate) error { return i.CanChangeStatus(models.StatusHospitalized) },
		func(i *models.Inmate) { i.ApplyStatus(models.StatusHospitalized, time.Now()) },
	)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailableForVisits())
}
