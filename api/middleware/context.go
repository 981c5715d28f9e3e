package middleware

import (
	"context"

	"github.com/sisterblooms/storefront-backend/pkg/kv"
)

type contextKey string

const ctxSessionID contextKey = "session_id"

// SessionIDFromContext returns the guest session resolved by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// TabIDFromContext returns the browser tab that sent the request, or "".
func TabIDFromContext(ctx context.Context) string {
	return kv.OriginFrom(ctx)
}
