package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	wechatTokenEndpoint    = "https://api.weixin.qq.com/sns/oauth2/access_token"
	wechatMPAuthEndpoint   = "https://open.weixin.qq.com/connect/oauth2/authorize"
	wechatOpenAuthEndpoint = "https://open.weixin.qq.com/connect/qrconnect"
)

// Wechat exchanges authorization codes against the WeChat sns endpoint.
// The same endpoint serves both the Official Account (MP) and the Open
// Platform surfaces; which one a client talks to is decided purely by the
// app key/secret pair it was built with.
type Wechat struct {
	Key    string
	Secret string

	endpoint     string
	authEndpoint string
	scope        string
	http         *http.Client
}

// NewWechatMP creates a client for the Official Account (in-app browser)
// surface.
func NewWechatMP(key, secret string, timeout time.Duration) *Wechat {
	w := newWechat(key, secret, timeout)
	w.authEndpoint = wechatMPAuthEndpoint
	w.scope = "snsapi_userinfo"
	return w
}

// NewWechatOpen creates a client for the Open Platform (QR code) surface.
func NewWechatOpen(key, secret string, timeout time.Duration) *Wechat {
	w := newWechat(key, secret, timeout)
	w.authEndpoint = wechatOpenAuthEndpoint
	w.scope = "snsapi_login"
	return w
}

func newWechat(key, secret string, timeout time.Duration) *Wechat {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Wechat{
		Key:      key,
		Secret:   secret,
		endpoint: wechatTokenEndpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// AuthURL builds the authorization URL the browser is sent to.
func (w *Wechat) AuthURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("appid", w.Key)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", w.scope)
	q.Set("state", state)
	return w.authEndpoint + "?" + q.Encode() + "#wechat_redirect"
}

type wechatTokenResponse struct {
	OpenID      string `json:"openid"`
	UnionID     string `json:"unionid"`
	AccessToken string `json:"access_token"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// Exchange trades an authorization code for the WeChat identifiers. A body
// carrying an errcode means WeChat processed the request and turned it
// down.
func (w *Wechat) Exchange(ctx context.Context, code string) (*Token, error) {
	q := url.Values{}
	q.Set("appid", w.Key)
	q.Set("secret", w.Secret)
	q.Set("code", code)
	q.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var tr wechatTokenResponse
	if err := decodeJSONBody(w.http, req, "wechat", "token", &tr); err != nil {
		return nil, err
	}
	if tr.ErrCode != 0 {
		return nil, fmt.Errorf("%w: errcode %d: %s", ErrRejected, tr.ErrCode, tr.ErrMsg)
	}
	return &Token{OpenID: tr.OpenID, UnionID: tr.UnionID, AccessToken: tr.AccessToken}, nil
}
