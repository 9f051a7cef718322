// Package resolver turns inbound credentials into internal accounts. One
// resolver exists per authentication method; each performs the
// lookup-or-create-or-link decision for its method against the credential
// store, calling out to the identity provider where the method requires it.
package resolver

import (
	"context"

	"github.com/flizi/authcenter/internal/store/core"
)

// Method tags dispatched by the facade. The "github" tag targets the Gitee
// endpoints; the alias is a deployment decision, kept visible in the
// provider configuration.
const (
	MethodSMS    = "SMS"
	MethodGithub = "github"
	MethodWxMP   = "WX_MP"
	MethodWxOpen = "WX_OPEN"
)

// Resolver resolves one method's credential into an account. credential is
// the method-specific opaque string (an SMS "phone:code" pair or an OAuth
// authorization code); redirectURI is only meaningful for OAuth methods.
//
// A nil error with a non-nil user is the only success shape. Declined
// outcomes return an error for which Declined(err) is true.
type Resolver interface {
	Resolve(ctx context.Context, credential, redirectURI string) (*core.User, error)
}

// Registry maps method tags to resolvers. Selection happens by one lookup,
// never by walking type switches.
type Registry struct {
	byMethod map[string]Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMethod: map[string]Resolver{}}
}

// Register binds a resolver to a method tag, replacing any previous one.
func (r *Registry) Register(method string, res Resolver) {
	r.byMethod[method] = res
}

// Lookup returns the resolver for a method tag.
func (r *Registry) Lookup(method string) (Resolver, bool) {
	res, ok := r.byMethod[method]
	return res, ok
}
