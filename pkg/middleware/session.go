package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "ssp_session"

// DefaultSessionTTL bounds how long a login stays valid without
// re-authenticating against the identity provider.
const DefaultSessionTTL = 12 * time.Hour

// Session is an authenticated browser session, created at OAuth2
// callback time. The role is captured at login; role healing happens
// once per login, not per request.
type Session struct {
	ID          string
	Email       string
	DisplayName string
	Role        authz.Role
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its TTL.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionStore is an in-memory TTL session store. Safe for concurrent
// use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session for the authenticated user and returns
// it.
func (s *SessionStore) Create(email, displayName string, role authz.Role) *Session {
	now := s.now().UTC()
	session := &Session{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns the session for the ID, or nil when missing or expired.
// Expired sessions are removed on access.
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if session.Expired(s.now()) {
		s.Delete(id)
		return nil
	}
	return session
}

// Delete removes the session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// PurgeExpired drops expired sessions and returns how many were
// removed.
func (s *SessionStore) PurgeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// FromRequest resolves the session referenced by the request cookie, or
// nil when absent, unknown, or expired.
func (s *SessionStore) FromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return s.Get(cookie.Value)
}

// SetCookie attaches the session cookie to the response.
func SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
