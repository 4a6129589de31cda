package middleware

import (
	"context"

	"github.com/upb/llm-datagen/internal/shared"
)

// Header names read or written by the middleware chain
const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	return shared.RequestID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return shared.WithRequestID(ctx, requestID)
}

// GetPrincipalFromContext retrieves the caller API key from context
func GetPrincipalFromContext(ctx context.Context) string {
	return shared.Principal(ctx)
}

// WithPrincipal adds the caller API key to the context
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return shared.WithPrincipal(ctx, principal)
}
