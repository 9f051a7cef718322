// Package auth holds the request/response shapes of the login endpoints.
package auth

// LoginRequest is the username/password login body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SocialLoginRequest is the social login body. Method is one of the
// resolver tags (SMS, github, WX_MP, WX_OPEN). State is the signed state
// token from the start endpoint; verified when present.
type SocialLoginRequest struct {
	Method      string `json:"method"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri,omitempty"`
	State       string `json:"state,omitempty"`
}

// LoginResponse carries the resolved principal and a gateway session token.
type LoginResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

// StartResponse carries the provider authorize URL for a social login.
type StartResponse struct {
	AuthorizeURL string `json:"authorize_url"`
	State        string `json:"state"`
}

// SignupRequest is the phone signup body.
type SignupRequest struct {
	Phone           string `json:"phone"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// SignupResponse confirms the account the signup landed on.
type SignupResponse struct {
	UserID string `json:"user_id"`
}

// BindPhoneRequest attaches a phone to the authenticated account.
type BindPhoneRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// BindWechatRequest attaches a WeChat identity to the authenticated
// account.
type BindWechatRequest struct {
	Code string `json:"code"`
}
