package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "visitgate/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseVisitorID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseVisitorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseVisitorID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		got, err := ParseVisitorID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, VisitorID(valid), got)
	})
}

func TestParseID_RejectsHostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE visits;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVisitID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, e1 := ParseVisitorID(valid)
		_, e2 := ParseInmateID(valid)
		_, e3 := ParseAuthorizationID(valid)
		_, e4 := ParseRestrictionID(valid)
		_, e5 := ParseVisitID(valid)
		_, e6 := ParseUserID(valid)
		_, e7 := ParseFacilityID(valid)
		for _, err := range []error{e1, e2, e3, e4, e5, e6, e7} {
			require.NoError(t, err)
		}
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, e1 := ParseVisitorID(input)
			_, e2 := ParseInmateID(input)
			_, e3 := ParseAuthorizationID(input)
			_, e4 := ParseRestrictionID(input)
			_, e5 := ParseVisitID(input)
			_, e6 := ParseUserID(input)
			_, e7 := ParseFacilityID(input)
			for _, err := range []error{e1, e2, e3, e4, e5, e6, e7} {
				require.Error(t, err)
			}
		})
	}
}

func TestIsNil(t *testing.T) {
	assert.True(t, VisitorID(uuid.Nil).IsNil())
	assert.False(t, VisitorID(uuid.New()).IsNil())
}
