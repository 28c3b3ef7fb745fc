// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them; services read them. Keeping
// the package free of net/http lets services consume request metadata
// without pulling in transport code.
//
// The request time accessor exists so that services never call time.Now
// directly: tests pin the clock with WithTime and exercise exact expiry
// boundaries.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithRequestID stores the request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTime pins the request clock. Middleware stamps each request once;
// tests use it to make time-dependent behavior deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}
