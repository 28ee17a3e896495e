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

var now = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func newVisitor(t *testing.T, birth time.Time) *Visitor {
	t.Helper()
	v, err := NewVisitor(id.VisitorID(uuid.New()), " ab-123 ", " Ana Pérez ", birth, Contact{Email: " Ana@Mail.com "}, now)
	require.NoError(t, err)
	return v
}

func TestNewVisitor(t *testing.T) {
	v := newVisitor(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "AB-123", v.DocumentNumber)
	assert.Equal(t, "Ana Pérez", v.FullName)
	assert.Equal(t, "ana@mail.com", v.Contact.Email)
	assert.True(t, v.IsActive())

	cases := map[string]struct {
		doc, name string
		birth     time.Time
	}{
		"blank document": {"  ", "Ana", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		"blank name":     {"X1", "", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		"missing birth":  {"X1", "Ana", time.Time{}},
		"future birth":   {"X1", "Ana", now.AddDate(0, 0, 1)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewVisitor(id.VisitorID(uuid.New()), tc.doc, tc.name, tc.birth, Contact{}, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestVisitor_MeetsMinimumAge(t *testing.T) {
	today := id.StartOfDay(now)

	turnsEighteenToday := newVisitor(t, time.Date(2008, 5, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, turnsEighteenToday.MeetsMinimumAge(18, today))

	turnsEighteenTomorrow := newVisitor(t, time.Date(2008, 5, 11, 0, 0, 0, 0, time.UTC))
	assert.False(t, turnsEighteenTomorrow.MeetsMinimumAge(18, today))
	assert.Equal(t, 17, turnsEighteenTomorrow.AgeOn(today))
	assert.True(t, turnsEighteenTomorrow.MeetsMinimumAge(0, today))
}

func TestVisitor_StatusTransitions(t *testing.T) {
	v := newVisitor(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	later := now.Add(time.Hour)

	assert.True(t, dErrors.HasCode(v.Reactivate(later), dErrors.CodeInvalidState))

	require.NoError(t, v.Deactivate(later))
	assert.False(t, v.IsActive())
	assert.Equal(t, later, v.UpdatedAt)
	assert.True(t, dErrors.HasCode(v.Deactivate(later), dErrors.CodeInvalidState))

	require.NoError(t, v.Reactivate(later))
	assert.True(t, v.IsActive())
}
