package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := NewSessionStore(time.Hour)

	session := store.Create("alice@company.com", "Alice", authz.RoleAdmin)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, authz.RoleAdmin, session.Role)

	got := store.Get(session.ID)
	require.NotNil(t, got)
	assert.Equal(t, "alice@company.com", got.Email)
}

func TestSessionStoreUnknownID(t *testing.T) {
	store := NewSessionStore(time.Hour)
	assert.Nil(t, store.Get("nope"))
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(time.Minute)
	session := store.Create("bob@example.com", "Bob", authz.RoleUser)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Nil(t, store.Get(session.ID), "expired session must not resolve")
}

func TestSessionStorePurgeExpired(t *testing.T) {
	store := NewSessionStore(time.Minute)
	store.Create("a@example.com", "A", authz.RoleUser)
	store.Create("b@example.com", "B", authz.RoleUser)

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 2, store.PurgeExpired())
	assert.Equal(t, 0, store.PurgeExpired())
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore(time.Hour)
	session := store.Create("alice@company.com", "Alice", authz.RoleAdmin)

	store.Delete(session.ID)
	assert.Nil(t, store.Get(session.ID))
}

func TestSessionFromRequest(t *testing.T) {
	store := NewSessionStore(time.Hour)
	session := store.Create("alice@company.com", "Alice", authz.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	got := store.FromRequest(req)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	// no cookie
	assert.Nil(t, store.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestCookieHelpers(t *testing.T) {
	store := NewSessionStore(time.Hour)
	session := store.Create("alice@company.com", "Alice", authz.RoleAdmin)

	rec := httptest.NewRecorder()
	SetCookie(rec, session)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, session.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	ClearCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
