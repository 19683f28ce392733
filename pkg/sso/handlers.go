package sso

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/httputil"
	"github.com/smartsupplypro/inventory/pkg/identity"
	"github.com/smartsupplypro/inventory/pkg/middleware"
	"github.com/smartsupplypro/inventory/pkg/observability"
)

const (
	// LoginPath starts the OAuth2 flow; the gate treats it as public.
	LoginPath = "/oauth2/authorization/google"
	// CallbackPath receives the provider redirect with the code.
	CallbackPath = "/login/oauth2/code/google"

	stateCookieName = "ssp_oauth_state"
	stateTTL        = 10 * time.Minute
)

// Handler serves the login flow endpoints.
type Handler struct {
	exchanger   Exchanger
	provisioner *identity.Provisioner
	sessions    *middleware.SessionStore
	allowList   authz.AllowList
	landingURL  string
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewHandler creates the SSO handler. landingURL is where the browser
// lands after a successful login (the frontend dashboard).
func NewHandler(exchanger Exchanger, provisioner *identity.Provisioner, sessions *middleware.SessionStore, allowList authz.AllowList, landingURL string, logger *observability.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{
		exchanger:   exchanger,
		provisioner: provisioner,
		sessions:    sessions,
		allowList:   allowList,
		landingURL:  landingURL,
		logger:      logger,
		metrics:     metrics,
	}
}

// RegisterRoutes attaches the login flow to the router. All of these
// paths are public in the request policy.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(LoginPath, h.Login).Methods(http.MethodGet)
	router.HandleFunc(CallbackPath, h.Callback).Methods(http.MethodGet)
	router.HandleFunc("/logout", h.Logout).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/api/auth/me", h.Me).Methods(http.MethodGet)
}

// Login starts the OAuth2 flow: bind a random state to a short-lived
// cookie and redirect to the provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(stateTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.exchanger.AuthCodeURL(state), http.StatusFound)
}

// Callback finishes the flow: verify state, exchange the code, provision
// the user with role resolution and healing, and establish the session.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httputil.WriteBadRequest(w, "invalid oauth2 state")
		return
	}
	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteBadRequest(w, "missing authorization code")
		return
	}

	ident, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.logger.WithError(err).Warn("oauth2 code exchange failed")
		httputil.WriteUnauthorized(w)
		return
	}

	user, err := h.provisioner.Login(r.Context(), ident.Email, ident.Name, h.allowList)
	if err != nil {
		h.logger.WithError(err).WithField("email", ident.Email).
			Error("failed to provision user at login")
		httputil.WriteInternalError(w, err)
		return
	}

	session := h.sessions.Create(user.Email, user.DisplayName, user.Role)
	middleware.SetCookie(w, session)

	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(string(user.Role)).Inc()
	}
	h.logger.WithFields(map[string]interface{}{
		"email": user.Email,
		"role":  string(user.Role),
	}).Info("login completed")

	http.Redirect(w, r, h.landingURL, http.StatusFound)
}

// Logout tears down the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
	}
	middleware.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me reports the authenticated caller's identity and role, or 401.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.FromRequest(r)
	if session == nil {
		httputil.WriteUnauthorized(w)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"email":        session.Email,
		"display_name": session.DisplayName,
		"role":         string(session.Role),
	})
}
