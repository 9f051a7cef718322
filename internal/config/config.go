package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SocialApp holds one provider's OAuth credentials.
type SocialApp struct {
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr    string `yaml:"addr"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	SMS struct {
		// Where LatestSmsCode reads from: "store" (same backend as users)
		// or "redis" (codes dropped there by the SMS sender).
		Backend string `yaml:"backend"`
		CodeTTL string `yaml:"code_ttl"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"sms"`

	Social struct {
		WxMp   SocialApp `yaml:"wx_mp"`
		WxOpen struct {
			SocialApp `yaml:",inline"`
			// RequireUnionID makes the open-platform flow reject exchanges
			// without a unionid, same as the MP flow. Off by default to
			// match historical behavior.
			RequireUnionID bool `yaml:"require_unionid"`
		} `yaml:"wx_open"`
		Github struct {
			SocialApp   `yaml:",inline"`
			RedirectURI string `yaml:"redirect_uri"`
		} `yaml:"github"`
		Timeout string `yaml:"timeout"`
	} `yaml:"social"`

	Auth struct {
		StateSecret string `yaml:"state_secret"`
		StateTTL    string `yaml:"state_ttl"`
		SessionTTL  string `yaml:"session_ttl"`
		Issuer      string `yaml:"issuer"`
	} `yaml:"auth"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Log struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// ${VAR} placeholders resolve against the environment so secrets stay
	// out of the YAML file.
	b = []byte(os.Expand(string(b), os.Getenv))

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.SMS.Backend == "" {
		c.SMS.Backend = "store"
	}
	if c.SMS.CodeTTL == "" {
		c.SMS.CodeTTL = "60s"
	}
	if c.SMS.Redis.Prefix == "" {
		c.SMS.Redis.Prefix = "sms:code:"
	}
	if c.Social.Timeout == "" {
		c.Social.Timeout = "8s"
	}
	if c.Social.Github.RedirectURI == "" {
		c.Social.Github.RedirectURI = strings.TrimRight(c.Server.BaseURL, "/") + "/auth-redirect"
	}
	if c.Auth.StateTTL == "" {
		c.Auth.StateTTL = "10m"
	}
	if c.Auth.SessionTTL == "" {
		c.Auth.SessionTTL = "30m"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "authcenter"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Log.Env == "" {
		c.Log.Env = c.App.Env
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks duration strings and cross-field requirements.
func (c *Config) Validate() error {
	for _, d := range []struct{ name, v string }{
		{"sms.code_ttl", c.SMS.CodeTTL},
		{"social.timeout", c.Social.Timeout},
		{"auth.state_ttl", c.Auth.StateTTL},
		{"auth.session_ttl", c.Auth.SessionTTL},
	} {
		if d.v == "" {
			continue
		}
		if _, err := time.ParseDuration(d.v); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return fmt.Errorf("storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn required for postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	switch c.SMS.Backend {
	case "store":
	case "redis":
		if c.SMS.Redis.Addr == "" {
			return fmt.Errorf("sms.redis.addr required for redis backend")
		}
	default:
		return fmt.Errorf("sms.backend: unknown backend %q", c.SMS.Backend)
	}
	if strings.EqualFold(c.App.Env, "prod") && c.Auth.StateSecret == "" {
		return fmt.Errorf("auth.state_secret required in prod")
	}
	return nil
}

// CodeTTL returns the SMS freshness window.
func (c *Config) CodeTTL() time.Duration { return mustDuration(c.SMS.CodeTTL, 60*time.Second) }

// SocialTimeout returns the outbound provider timeout.
func (c *Config) SocialTimeout() time.Duration { return mustDuration(c.Social.Timeout, 8*time.Second) }

// StateTTL returns the OAuth state token lifetime.
func (c *Config) StateTTL() time.Duration { return mustDuration(c.Auth.StateTTL, 10*time.Minute) }

// SessionTTL returns the gateway session token lifetime.
func (c *Config) SessionTTL() time.Duration { return mustDuration(c.Auth.SessionTTL, 30*time.Minute) }

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("SMS_REDIS_ADDR"); ok {
		c.SMS.Redis.Addr = v
	}
	if v, ok := getEnvStr("AUTH_STATE_SECRET"); ok {
		c.Auth.StateSecret = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
