package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func giteeForTest(srv *httptest.Server) *Gitee {
	g := NewGitee("key", "secret", "https://example.com/auth-redirect", 0)
	g.tokenEndpoint = srv.URL + "/oauth/token"
	g.userEndpoint = srv.URL + "/api/v5/user"
	g.http = srv.Client()
	return g
}

// The exchange always sends the redirect URI registered with the provider,
// never a caller-chosen one.
func TestGiteeExchangeSendsFixedRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "key", q.Get("client_id"))
		require.Equal(t, "secret", q.Get("client_secret"))
		require.Equal(t, "https://example.com/auth-redirect", q.Get("redirect_uri"))
		require.Equal(t, "c1", q.Get("code"))
		_, _ = w.Write([]byte(`{"access_token":"t1"}`))
	}))
	defer srv.Close()

	tok, err := giteeForTest(srv).Exchange(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "t1", tok.AccessToken)
}

func TestGiteeExchangeErrorFieldRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer srv.Close()

	_, err := giteeForTest(srv).Exchange(context.Background(), "bad")
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "invalid_grant")
}

func TestGiteeFetchProfileBearerAndNumericID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v5/user", r.URL.Path)
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"login":"octocat"}`))
	}))
	defer srv.Close()

	p, err := giteeForTest(srv).FetchProfile(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "42", p.ID)
}

func TestGiteeFetchProfileMissingIDRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	}))
	defer srv.Close()

	_, err := giteeForTest(srv).FetchProfile(context.Background(), "t1")
	require.ErrorIs(t, err, ErrRejected)
}

func TestGiteeFetchProfileServerErrorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := giteeForTest(srv).FetchProfile(context.Background(), "t1")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestGiteeAuthURL(t *testing.T) {
	g := NewGitee("key", "secret", "https://example.com/auth-redirect", 0)
	u := g.AuthURL("st4te")
	require.True(t, strings.HasPrefix(u, giteeAuthEndpoint+"?"))
	require.Contains(t, u, "client_id=key")
	require.Contains(t, u, "state=st4te")
	require.Contains(t, u, "redirect_uri=https%3A%2F%2Fexample.com%2Fauth-redirect")
}
