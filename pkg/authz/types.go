package authz

import "fmt"

// Role represents the application role of an authenticated user.
// The model is a fixed two-role scheme: admins may mutate everything,
// users are restricted to a subset of fields on update.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole parses a stored role value. Unknown values are an error so
// callers can decide to fail closed rather than silently escalate.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unrecognized role %q", s)
	}
}

// RoleOrUser parses a stored role value, falling back to the most
// restrictive role when the value is missing or unrecognized.
func RoleOrUser(s string) Role {
	role, err := ParseRole(s)
	if err != nil {
		return RoleUser
	}
	return role
}

// Context is the ephemeral per-request authorization context. It is
// constructed fresh for every request and passed explicitly through the
// call chain; it is never persisted and holds no ambient state.
type Context struct {
	Role          Role `json:"role"`
	Authenticated bool `json:"authenticated"`
	DemoMode      bool `json:"demo_mode"`
}

// Anonymous returns a context for an unauthenticated request.
func Anonymous(demoMode bool) Context {
	return Context{Role: RoleUser, Authenticated: false, DemoMode: demoMode}
}

// Outcome is the terminal result of a request authorization decision.
type Outcome int

const (
	// Allow permits the request to proceed.
	Allow Outcome = iota
	// DenyUnauthenticated rejects the request for lack of a verified
	// identity; surfaced as HTTP 401.
	DenyUnauthenticated
	// DenyForbidden rejects the request for insufficient privileges or
	// demo-mode read-only enforcement; surfaced as HTTP 403.
	DenyForbidden
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating the request policy. Reason is
// advisory and distinguishes demo-mode denials from role denials so the
// caller can render them differently.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Denial reasons. DemoReadOnly is kept distinguishable from
// InsufficientRole so API clients can render "demo mode" separately.
const (
	ReasonUnauthenticated  = "authentication required"
	ReasonInsufficientRole = "admin role required for mutations"
	ReasonDemoReadOnly     = "demo mode is read-only"
)

// FieldValues is a flat field-name to rendered-value snapshot of an
// entity, used to diff an incoming change-set against persisted state.
type FieldValues map[string]string
