package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "visitgate/pkg/domain"
)

func TestNow(t *testing.T) {
	t.Run("falls back to wall clock", func(t *testing.T) {
		before := time.Now()
		got := Now(context.Background())
		assert.False(t, got.Before(before))
	})

	t.Run("returns pinned time", func(t *testing.T) {
		fixed := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, fixed, Now(WithTime(context.Background(), fixed)))
	})
}

func TestOperatorAndRequestID(t *testing.T) {
	ctx := context.Background()
	assert.True(t, OperatorID(ctx).IsNil())
	assert.Empty(t, RequestID(ctx))

	operator := id.UserID(uuid.New())
	ctx = WithRequestID(WithOperatorID(ctx, operator), "req-1")
	assert.Equal(t, operator, OperatorID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
}
