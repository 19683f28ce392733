package identity

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

func setupUserStore(t *testing.T) *SQLUserStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return NewSQLUserStore(db)
}

func TestUserStoreCreateAndFind(t *testing.T) {
	store := setupUserStore(t)
	ctx := context.Background()

	user := &User{
		Email:       "Alice@Company.com",
		DisplayName: "Alice",
		Role:        authz.RoleAdmin,
	}
	require.NoError(t, store.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	// lookup is case-insensitive
	got, err := store.FindByEmail(ctx, "alice@company.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, authz.RoleAdmin, got.Role)
}

func TestUserStoreFindMissing(t *testing.T) {
	store := setupUserStore(t)

	_, err := store.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStoreUpdateRole(t *testing.T) {
	store := setupUserStore(t)
	ctx := context.Background()

	user := &User{Email: "bob@example.com", DisplayName: "Bob", Role: authz.RoleUser}
	require.NoError(t, store.Create(ctx, user))

	require.NoError(t, store.UpdateRole(ctx, "BOB@example.com", authz.RoleAdmin))

	got, err := store.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, got.Role)
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	store := setupUserStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &User{Email: "dup@example.com", DisplayName: "A", Role: authz.RoleUser}))
	err := store.Create(ctx, &User{Email: "dup@example.com", DisplayName: "B", Role: authz.RoleUser})
	assert.Error(t, err)
}

func TestUserStoreUnknownRoleDefaultsToUser(t *testing.T) {
	store := setupUserStore(t)
	ctx := context.Background()

	user := &User{Email: "odd@example.com", DisplayName: "Odd", Role: "SUPERADMIN"}
	require.NoError(t, store.Create(ctx, user))

	got, err := store.FindByEmail(ctx, "odd@example.com")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, got.Role, "unrecognized persisted role must fail secure")
}

func TestUserStoreTouchLastLogin(t *testing.T) {
	store := setupUserStore(t)
	ctx := context.Background()

	user := &User{Email: "bob@example.com", DisplayName: "Bob", Role: authz.RoleUser}
	require.NoError(t, store.Create(ctx, user))
	require.NoError(t, store.TouchLastLogin(ctx, "bob@example.com"))

	got, err := store.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}

func TestUserStoreUpdateRoleQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE app_users").
		WillReturnError(sql.ErrConnDone)

	store := NewSQLUserStore(db)
	err = store.UpdateRole(context.Background(), "bob@example.com", authz.RoleAdmin)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
