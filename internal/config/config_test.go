package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  env: dev\n")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "store", c.SMS.Backend)
	require.Equal(t, "authcenter", c.Auth.Issuer)
	require.Equal(t, 60*time.Second, c.CodeTTL())
	require.Equal(t, 8*time.Second, c.SocialTimeout())
	require.Equal(t, 10*time.Minute, c.StateTTL())
	require.Equal(t, 30*time.Minute, c.SessionTTL())
	require.Equal(t, "http://localhost:8080/auth-redirect", c.Social.Github.RedirectURI)
}

func TestLoadEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GITEE_KEY", "k-from-env")
	path := writeConfig(t, `
app:
  env: dev
social:
  github:
    key: "${TEST_GITEE_KEY}"
`)

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "k-from-env", c.Social.Github.Key)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("AUTH_STATE_SECRET", "sekrit")
	path := writeConfig(t, "app:\n  env: dev\nserver:\n  addr: \":8080\"\n")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", c.Server.Addr)
	require.Equal(t, "sekrit", c.Auth.StateSecret)
}

func TestLoadUnknownDriver(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: mysql\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "unknown driver")
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: postgres\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "storage.dsn required")
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	path := writeConfig(t, "sms:\n  backend: redis\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "sms.redis.addr required")
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "sms:\n  code_ttl: sixty\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "sms.code_ttl")
}

func TestLoadProdRequiresStateSecret(t *testing.T) {
	t.Setenv("AUTH_STATE_SECRET", "")
	path := writeConfig(t, "app:\n  env: prod\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "auth.state_secret required")
}

func TestWxOpenRequireUnionID(t *testing.T) {
	path := writeConfig(t, `
social:
  wx_open:
    key: k
    secret: s
    require_unionid: true
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "k", c.Social.WxOpen.Key)
	require.True(t, c.Social.WxOpen.RequireUnionID)
}
