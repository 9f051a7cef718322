// Package auth is the authentication facade: it dispatches an inbound
// (method, credential) pair to the matching resolver and wraps the result
// into a principal, or reports that no identity was resolved.
package auth

import (
	"context"
	"errors"

	"github.com/flizi/authcenter/internal/metrics"
	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/resolver"
)

// ErrUserNotFound is the distinct condition for the username path only.
var ErrUserNotFound = errors.New("user not found")

// Facade dispatches authentication requests to resolvers.
type Facade struct {
	password *resolver.Password
	registry *resolver.Registry
}

// NewFacade creates a facade over a password resolver and a social registry.
func NewFacade(pw *resolver.Password, reg *resolver.Registry) *Facade {
	return &Facade{password: pw, registry: reg}
}

// Authenticate is the plain-username path used by password login. The
// principal carries the password hash so the caller can compare it against
// the supplied plaintext; the comparison itself does not happen here.
func (f *Facade) Authenticate(ctx context.Context, username string) (*Principal, error) {
	u, err := f.password.ResolveUsername(ctx, username)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			metrics.Resolutions.WithLabelValues("password", "not_found").Inc()
			return nil, ErrUserNotFound
		}
		metrics.Resolutions.WithLabelValues("password", "error").Inc()
		return nil, err
	}
	metrics.Resolutions.WithLabelValues("password", "ok").Inc()
	return newPrincipal(u.ID, u.Password), nil
}

// AuthenticateSocial dispatches by method tag. A (nil, nil) return means
// "authentication declined": unknown tag, bad credential, unknown
// identifier or a provider that rejected the exchange all look identical to
// the caller, so nothing leaks about which identifiers exist. Only
// provider-unreachable and unresolved store conflicts surface as errors.
func (f *Facade) AuthenticateSocial(ctx context.Context, method, credential, redirectURI string) (*Principal, error) {
	log := logger.From(ctx).With(logger.Layer("facade"), logger.AuthMethod(method))

	res, ok := f.registry.Lookup(method)
	if !ok {
		log.Debug("unrecognized method tag, declining")
		// Fixed sentinel label: the tag is attacker-chosen on this
		// unauthenticated path and must not mint new metric series.
		metrics.Resolutions.WithLabelValues("unknown", "unknown_method").Inc()
		return nil, nil
	}

	u, err := res.Resolve(ctx, credential, redirectURI)
	if err != nil {
		if resolver.Declined(err) {
			log.Info("authentication declined", logger.Err(err))
			metrics.Resolutions.WithLabelValues(method, "declined").Inc()
			return nil, nil
		}
		log.Error("resolution fault", logger.Err(err))
		metrics.Resolutions.WithLabelValues(method, "error").Inc()
		return nil, err
	}

	metrics.Resolutions.WithLabelValues(method, "ok").Inc()
	// Password hash intentionally left out of the social path.
	return newPrincipal(u.ID, ""), nil
}
