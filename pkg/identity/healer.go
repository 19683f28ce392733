package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/observability"
)

// Heal reconciles a persisted role against the role the allow-list
// currently resolves for the email. It is pure and idempotent: once the
// persisted role converges, further calls report changed=false. The
// caller is responsible for persisting a changed role.
func Heal(email string, persistedRole authz.Role, allowList authz.AllowList) (authz.Role, bool) {
	desired := authz.ResolveRole(email, allowList)
	return desired, desired != persistedRole
}

// Provisioner handles find-or-create user provisioning and role healing.
// It runs exactly once per successful login event, never per request, so
// allow-list edits take effect on next login.
type Provisioner struct {
	store   UserStore
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewProvisioner creates a provisioner over the given user store.
// metrics may be nil.
func NewProvisioner(store UserStore, logger *observability.Logger, metrics *observability.Metrics) *Provisioner {
	return &Provisioner{store: store, logger: logger, metrics: metrics}
}

// Login provisions the user on first login and heals the persisted role
// against the allow-list. The returned user always carries the freshly
// resolved role, even if persisting the healed role failed: the current
// session must never authorize against a stale value.
func (p *Provisioner) Login(ctx context.Context, email, displayName string, allowList authz.AllowList) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("oauth2 provider did not supply an email")
	}
	if displayName == "" {
		displayName = email
	}

	user, err := p.store.FindByEmail(ctx, email)
	if err == ErrNotFound {
		user, err = p.create(ctx, email, displayName, allowList)
	}
	if err != nil {
		return nil, err
	}

	desired, changed := Heal(user.Email, user.Role, allowList)
	if changed {
		if saveErr := p.store.UpdateRole(ctx, user.Email, desired); saveErr != nil {
			// The session still proceeds with the computed role; the next
			// login retries the write.
			p.logger.WithError(saveErr).WithField("email", user.Email).
				Warn("failed to persist healed role")
		} else {
			p.logger.WithFields(map[string]interface{}{
				"email": user.Email,
				"from":  string(user.Role),
				"to":    string(desired),
			}).Info("healed user role from allow-list")
			if p.metrics != nil {
				p.metrics.RoleHealingsTotal.Inc()
			}
		}
		user.Role = desired
	}

	if err := p.store.TouchLastLogin(ctx, user.Email); err != nil {
		p.logger.WithError(err).WithField("email", user.Email).
			Warn("failed to record last login")
	}

	return user, nil
}

func (p *Provisioner) create(ctx context.Context, email, displayName string, allowList authz.AllowList) (*User, error) {
	user := &User{
		Email:       email,
		DisplayName: displayName,
		Role:        authz.ResolveRole(email, allowList),
		CreatedAt:   time.Now().UTC(),
	}

	err := p.store.Create(ctx, user)
	if err == nil {
		p.logger.WithFields(map[string]interface{}{
			"email": user.Email,
			"role":  string(user.Role),
		}).Info("provisioned new user from oauth2 login")
		return user, nil
	}

	// A concurrent first login may have inserted the row between the
	// lookup and the insert; fall back to the winner's record.
	if IsUniqueViolation(err) {
		p.logger.WithField("email", email).Debug("concurrent first login, reusing existing record")
	}
	existing, findErr := p.store.FindByEmail(ctx, email)
	if findErr != nil {
		return nil, fmt.Errorf("failed to provision user %s: %w", email, err)
	}
	return existing, nil
}
