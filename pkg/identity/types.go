// Package identity manages local user records provisioned from OAuth2
// logins: find-or-create on first login, and role healing against the
// admin allow-list on every subsequent login.
package identity

import (
	"errors"
	"time"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// ErrNotFound is returned when no user exists for the given email.
var ErrNotFound = errors.New("user not found")

// User is a locally persisted user record. Identity is the unique,
// case-insensitive email returned by the OAuth2 provider; the email is
// immutable and records are never deleted by this subsystem.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        authz.Role `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
