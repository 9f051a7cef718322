// Package provider implements the outbound OAuth2 clients for the external
// identity providers. Each client is configured once with its app key/secret
// pair and a shared timeout, and is reused across requests.
//
// The WeChat and Gitee token endpoints historically serve JSON with a
// text/plain or text/html content type, so every response body here is
// parsed as JSON regardless of Content-Type.
package provider

import (
	"context"
	"errors"
)

var (
	// ErrUnreachable covers network failures, timeouts and non-2xx
	// responses from a provider endpoint. Callers present this as a
	// transient fault, not as wrong credentials.
	ErrUnreachable = errors.New("provider unreachable")

	// ErrRejected covers responses the provider did deliver but that lack
	// a required field (no access token, no union id) or carry an explicit
	// provider error code.
	ErrRejected = errors.New("provider rejected")
)

// Token is the normalized result of an authorization-code exchange.
// Providers fill only the fields their flow yields.
type Token struct {
	OpenID      string
	UnionID     string
	AccessToken string
}

// Profile is the normalized result of an authenticated profile fetch.
type Profile struct {
	ID string
}

// Exchanger performs the OAuth2 authorization-code exchange.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*Token, error)
}

// ProfileFetcher performs an authenticated profile fetch with a bearer
// token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
