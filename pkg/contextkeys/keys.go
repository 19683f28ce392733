// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/smartsupplypro/inventory/pkg/contextkeys"
//	ctx = contextkeys.WithAuthorization(ctx, authCtx)
//	authCtx := ctx.Value(contextkeys.AuthorizationKey).(authz.Context)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthorizationKey contains the per-request authz.Context value
	// Set by: middleware.Gate (pkg/middleware/gate.go)
	// Required by: write services, audit recording
	// Type: authz.Context
	AuthorizationKey Key = "authorization_context"

	// ActorEmailKey contains the authenticated user's email
	// Set by: middleware.Gate after session resolution
	// Used by: logger, audit trail
	// Type: string
	ActorEmailKey Key = "actor_email"

	// RequestIDKey contains request ID string (UUID)
	// Set by: HTTP middleware, observability layer
	// Used by: logger, audit trail
	// Type: string
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: observability middleware
	// Used by: handlers that need structured logging with request context
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// Helper functions for type-safe context operations

// WithAuthorization adds the per-request authorization context
func WithAuthorization(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthorizationKey, authCtx)
}

// WithActorEmail adds the authenticated actor's email to the context
func WithActorEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ActorEmailKey, email)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetActorEmail retrieves the actor email from context
func GetActorEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ActorEmailKey).(string); ok {
		return email
	}
	return ""
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
