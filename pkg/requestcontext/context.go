// Package requestcontext provides context accessors for request-scoped values.
//
// Services read the acting operator, the correlation ID, and the current time
// from here instead of from globals, which keeps the clock injectable:
//
//	now := requestcontext.Now(ctx)
//	ctx = requestcontext.WithTime(ctx, fixedTime) // tests
package requestcontext

import (
	"context"
	"time"

	id "visitgate/pkg/domain"
)

type (
	operatorIDKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyOperatorID  = operatorIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// OperatorID retrieves the acting operator from the context.
// Returns the zero value (nil UUID) if not set.
func OperatorID(ctx context.Context) id.UserID {
	if operatorID, ok := ctx.Value(ContextKeyOperatorID).(id.UserID); ok {
		return operatorID
	}
	return id.UserID{}
}

func WithOperatorID(ctx context.Context, operatorID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyOperatorID, operatorID)
}

func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the clock for everything downstream of ctx. Used by tests and
// by the access controller so one check-in sees a single "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
