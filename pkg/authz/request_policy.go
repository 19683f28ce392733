package authz

import (
	"net/http"
	"strings"
)

// RequestPolicy decides whether an HTTP request may proceed, given the
// per-request authorization context. It is stateless and safe for
// concurrent use; path tables are fixed at construction.
type RequestPolicy struct {
	publicPaths    map[string]struct{}
	publicPrefixes []string
	readablePrefix []string
}

// NewRequestPolicy returns the request policy with the application's
// route tables: public endpoints (login, logout, error, health) and the
// readable resource classes served in demo mode.
func NewRequestPolicy() *RequestPolicy {
	return &RequestPolicy{
		publicPaths: map[string]struct{}{
			"/":       {},
			"/logout": {},
			"/error":  {},
		},
		publicPrefixes: []string{
			"/health",
			"/actuator",
			"/api/health",
			"/oauth2/",
			"/login/",
		},
		readablePrefix: []string{
			"/api/inventory",
			"/api/suppliers",
			"/api/analytics",
		},
	}
}

// mutating methods gate the write path. Anything else is treated as a
// read for decision purposes.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (p *RequestPolicy) isPublic(path string) bool {
	if _, ok := p.publicPaths[path]; ok {
		return true
	}
	for _, prefix := range p.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isReadable reports whether the path belongs to a resource class that
// demo mode exposes read-only.
func (p *RequestPolicy) isReadable(path string) bool {
	for _, prefix := range p.readablePrefix {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide evaluates the request policy. The order of checks is load
// bearing: public and demo carve-outs run before the authentication
// gate, and the demo write check runs before the role check so no role
// bypasses demo read-only enforcement. Every request produces exactly
// one terminal decision.
func (p *RequestPolicy) Decide(method, path string, authCtx Context) Decision {
	// CORS preflight and public endpoints bypass authentication.
	if method == http.MethodOptions || p.isPublic(path) {
		return Decision{Outcome: Allow}
	}

	// Demo mode serves the readable resource whitelist anonymously.
	if authCtx.DemoMode && method == http.MethodGet && p.isReadable(path) {
		return Decision{Outcome: Allow}
	}

	if !authCtx.Authenticated {
		return Decision{Outcome: DenyUnauthenticated, Reason: ReasonUnauthenticated}
	}

	if isMutating(method) {
		if authCtx.DemoMode {
			return Decision{Outcome: DenyForbidden, Reason: ReasonDemoReadOnly}
		}
		if authCtx.Role != RoleAdmin {
			return Decision{Outcome: DenyForbidden, Reason: ReasonInsufficientRole}
		}
		return Decision{Outcome: Allow}
	}

	// Reads and unmatched paths require authentication at minimum, which
	// already held above.
	return Decision{Outcome: Allow}
}
