package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// UserStore persists user records.
type UserStore interface {
	// FindByEmail looks a user up by normalized email. Returns
	// ErrNotFound when no record exists.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a new user record. A unique-email violation is
	// returned as-is so callers can resolve provisioning races.
	Create(ctx context.Context, user *User) error

	// UpdateRole persists a healed role. Writing the same role twice is
	// harmless; the update is a single-row idempotent write.
	UpdateRole(ctx context.Context, email string, role authz.Role) error

	// TouchLastLogin stamps the user's last successful login.
	TouchLastLogin(ctx context.Context, email string) error
}

// SQLUserStore is a database/sql backed UserStore (postgres in
// production, sqlite in tests).
type SQLUserStore struct {
	db *sql.DB
}

// NewSQLUserStore creates a UserStore on top of an open database handle.
func NewSQLUserStore(db *sql.DB) *SQLUserStore {
	return &SQLUserStore{db: db}
}

// FindByEmail looks a user up by email, lower-cased in SQL so lookups
// stay case-insensitive regardless of how the row was written.
func (s *SQLUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	var role string
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, created_at, updated_at, last_login_at
		FROM app_users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &role,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.Role = authz.RoleOrUser(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return user, nil
}

// Create inserts a new user. The caller owns conflict resolution; a
// duplicate email surfaces as the driver's unique-violation error.
func (s *SQLUserStore) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (id, email, display_name, role, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.DisplayName, string(user.Role),
		user.CreatedAt, user.UpdatedAt, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateRole persists the resolved role for the user.
func (s *SQLUserStore) UpdateRole(ctx context.Context, email string, role authz.Role) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET role = $1, updated_at = $2
		WHERE LOWER(email) = LOWER($3)
	`, string(role), time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// TouchLastLogin stamps the user's last successful login time.
func (s *SQLUserStore) TouchLastLogin(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET last_login_at = $1
		WHERE LOWER(email) = LOWER($2)
	`, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether the error is a postgres unique
// constraint violation, used to resolve concurrent first-login races.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Migrate creates the app_users table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS app_users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			last_login_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate app_users: %w", err)
	}
	return nil
}
