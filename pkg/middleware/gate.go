package middleware

import (
	"net/http"

	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/contextkeys"
	"github.com/smartsupplypro/inventory/pkg/httputil"
	"github.com/smartsupplypro/inventory/pkg/observability"
)

// Gate enforces the request authorization policy on every request. It
// builds a fresh authorization context per request from the session (if
// any), evaluates the policy, and translates denials into the two
// distinct HTTP error surfaces: a JSON 401 for API clients, a login
// redirect for browsers, and a JSON 403 for authorization failures.
type Gate struct {
	policy   *authz.RequestPolicy
	sessions *SessionStore
	demoMode bool
	loginURL string
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewGate creates the authorization gate. loginURL is where browser
// requests are redirected when unauthenticated.
func NewGate(policy *authz.RequestPolicy, sessions *SessionStore, demoMode bool, loginURL string, logger *observability.Logger, metrics *observability.Metrics) *Gate {
	return &Gate{
		policy:   policy,
		sessions: sessions,
		demoMode: demoMode,
		loginURL: loginURL,
		logger:   logger,
		metrics:  metrics,
	}
}

// authContext derives the per-request authorization context. No session
// means anonymous; an expired session is indistinguishable from none.
func (g *Gate) authContext(r *http.Request) (authz.Context, *Session) {
	session := g.sessions.FromRequest(r)
	if session == nil {
		return authz.Anonymous(g.demoMode), nil
	}
	return authz.Context{
		Role:          session.Role,
		Authenticated: true,
		DemoMode:      g.demoMode,
	}, session
}

// Handler wraps next with the authorization gate.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, session := g.authContext(r)
		decision := g.policy.Decide(r.Method, r.URL.Path, authCtx)

		if g.metrics != nil {
			g.metrics.AuthzDecisionsTotal.WithLabelValues(r.Method, decision.Outcome.String()).Inc()
		}

		switch decision.Outcome {
		case authz.Allow:
			ctx := contextkeys.WithAuthorization(r.Context(), authCtx)
			if session != nil {
				ctx = contextkeys.WithActorEmail(ctx, session.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))

		case authz.DenyUnauthenticated:
			g.logger.WithFields(map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			}).Debug("rejecting unauthenticated request")
			if httputil.IsAPIRequest(r) {
				httputil.WriteUnauthorized(w)
				return
			}
			http.Redirect(w, r, g.loginURL, http.StatusFound)

		case authz.DenyForbidden:
			email := ""
			if session != nil {
				email = session.Email
			}
			g.logger.WithFields(map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
				"actor":  email,
				"reason": decision.Reason,
			}).Info("request forbidden")
			httputil.WriteForbidden(w, decision.Reason)

		default:
			// unreachable, but never fall through to an allow
			httputil.WriteForbidden(w, "access denied")
		}
	})
}
