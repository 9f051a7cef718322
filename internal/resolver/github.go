package resolver

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/store/core"
)

// GithubClient is the provider surface the GitHub/Gitee resolver needs:
// code exchange plus a bearer-token profile fetch.
type GithubClient interface {
	provider.Exchanger
	provider.ProfileFetcher
}

// Github resolves a GitHub/Gitee authorization code. The token exchange
// uses the redirect URI registered with the provider, not the one the login
// caller supplied; the github id, once linked, is never revised.
type Github struct {
	Store  core.Store
	Client GithubClient
}

// Resolve exchanges the code, fetches the profile and looks up or creates
// the account.
func (r *Github) Resolve(ctx context.Context, code, _ string) (*core.User, error) {
	log := logger.From(ctx).With(logger.Component("resolver.github"))

	tok, err := r.Client.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github exchange: %w", err)
	}
	if tok.AccessToken == "" {
		log.Info("exchange without access token, rejecting")
		return nil, fmt.Errorf("%w: no access token in exchange", provider.ErrRejected)
	}

	profile, err := r.Client.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("github profile: %w", err)
	}

	u, err := r.Store.FindByColumn(ctx, core.ColumnGithubID, profile.ID)
	if err == nil {
		return u, nil
	}
	if !core.IsNotFound(err) {
		return nil, fmt.Errorf("find by github id: %w", err)
	}

	hash, err := password.Placeholder()
	if err != nil {
		return nil, fmt.Errorf("placeholder password: %w", err)
	}
	created := &core.User{
		Password: hash,
		GithubID: profile.ID,
	}
	u, err = insertOrRecover(ctx, r.Store, created, core.ColumnGithubID, profile.ID)
	if err != nil {
		return nil, err
	}
	log.Info("account created from github login", logger.UserID(u.ID))
	return u, nil
}
