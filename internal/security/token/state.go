// Package token signs the short-lived JWTs the gateway itself consumes:
// the OAuth state parameter handed to identity providers and the session
// token returned on login. Both are HS256 over a locally configured secret;
// nothing here is meant for external verification.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// StateAudience is the audience claim on social state tokens.
const StateAudience = "social-state"

// SessionAudience is the audience claim on gateway session tokens.
const SessionAudience = "gateway-session"

var (
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrAudience      = errors.New("token audience mismatch")
	ErrStateProvider = errors.New("state provider mismatch")
)

// StateClaims travels inside the OAuth state parameter across the redirect
// to the identity provider and back.
type StateClaims struct {
	Method      string // resolver method tag: WX_MP, WX_OPEN, github
	RedirectURI string
	Nonce       string
}

// Signer issues and validates gateway-internal JWTs.
type Signer struct {
	secret     []byte
	issuer     string
	stateTTL   time.Duration
	sessionTTL time.Duration
}

// NewSigner creates a Signer. TTLs of zero fall back to 10m for state and
// 30m for sessions.
func NewSigner(secret, issuer string, stateTTL, sessionTTL time.Duration) *Signer {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &Signer{
		secret:     []byte(secret),
		issuer:     issuer,
		stateTTL:   stateTTL,
		sessionTTL: sessionTTL,
	}
}

// SignState signs a state token. The nonce is generated when empty.
func (s *Signer) SignState(claims StateClaims) (string, error) {
	nonce := claims.Nonce
	if nonce == "" {
		nonce = newNonce()
	}
	now := time.Now().UTC()
	mapClaims := jwtv5.MapClaims{
		"iss":    s.issuer,
		"aud":    StateAudience,
		"exp":    now.Add(s.stateTTL).Unix(),
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"method": claims.Method,
		"nonce":  nonce,
	}
	if claims.RedirectURI != "" {
		mapClaims["redir"] = claims.RedirectURI
	}
	t := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mapClaims)
	return t.SignedString(s.secret)
}

// ParseState validates a state token and checks it was minted for method.
func (s *Signer) ParseState(tokenString, method string) (*StateClaims, error) {
	mapClaims, err := s.parse(tokenString, StateAudience)
	if err != nil {
		return nil, err
	}
	claims := &StateClaims{
		Method:      getString(mapClaims, "method"),
		RedirectURI: getString(mapClaims, "redir"),
		Nonce:       getString(mapClaims, "nonce"),
	}
	if claims.Method != method {
		return nil, ErrStateProvider
	}
	return claims, nil
}

// SignSession signs a session token for an authenticated user.
func (s *Signer) SignSession(userID string) (string, error) {
	now := time.Now().UTC()
	t := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss": s.issuer,
		"aud": SessionAudience,
		"sub": userID,
		"exp": now.Add(s.sessionTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	})
	return t.SignedString(s.secret)
}

// ParseSession validates a session token and returns the user id.
func (s *Signer) ParseSession(tokenString string) (string, error) {
	mapClaims, err := s.parse(tokenString, SessionAudience)
	if err != nil {
		return "", err
	}
	sub := getString(mapClaims, "sub")
	if sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}

func (s *Signer) parse(tokenString, audience string) (jwtv5.MapClaims, error) {
	tk, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (any, error) {
		return s.secret, nil
	}, jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tk.Valid {
		return nil, ErrTokenInvalid
	}
	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if iss, _ := mapClaims["iss"].(string); iss != s.issuer {
		return nil, ErrTokenInvalid
	}
	if aud, _ := mapClaims["aud"].(string); aud != audience {
		return nil, ErrAudience
	}
	return mapClaims, nil
}

func newNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
