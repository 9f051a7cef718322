package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/flizi/authcenter/internal/auth"
	dto "github.com/flizi/authcenter/internal/http/dto/auth"
	httperrors "github.com/flizi/authcenter/internal/http/errors"
	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/resolver"
	"github.com/flizi/authcenter/internal/security/token"
)

// SocialController handles the social login endpoints: building the
// provider authorize URL (start) and exchanging the callback code for a
// principal (login).
type SocialController struct {
	facade *authsvc.Facade
	signer *token.Signer

	wxMP   *provider.Wechat
	wxOpen *provider.Wechat
	gitee  *provider.Gitee
}

// NewSocialController creates the social login controller.
func NewSocialController(facade *authsvc.Facade, signer *token.Signer, wxMP, wxOpen *provider.Wechat, gitee *provider.Gitee) *SocialController {
	return &SocialController{facade: facade, signer: signer, wxMP: wxMP, wxOpen: wxOpen, gitee: gitee}
}

// Start handles GET /api/social/{method}/start. It signs a state token and
// answers with the provider's authorize URL for the browser to follow.
func (c *SocialController) Start(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	redirectURI := r.URL.Query().Get("redirect_uri")

	state, err := c.signer.SignState(token.StateClaims{Method: method, RedirectURI: redirectURI})
	if err != nil {
		logger.From(r.Context()).Error("sign state failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	var authorizeURL string
	switch method {
	case resolver.MethodWxMP:
		authorizeURL = c.wxMP.AuthURL(redirectURI, state)
	case resolver.MethodWxOpen:
		authorizeURL = c.wxOpen.AuthURL(redirectURI, state)
	case resolver.MethodGithub:
		authorizeURL = c.gitee.AuthURL(state)
	default:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown method"))
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, dto.StartResponse{AuthorizeURL: authorizeURL, State: state})
}

// Login handles POST /api/login/social. Declined resolutions answer with
// the same invalid-credentials error regardless of cause; only a provider
// outage or an unresolved store race gets its own status.
func (c *SocialController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SocialLogin"))

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.SocialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON"))
		return
	}
	if req.Method == "" || req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing method or code"))
		return
	}

	if req.State != "" {
		if _, err := c.signer.ParseState(req.State, req.Method); err != nil {
			log.Warn("state validation failed", logger.AuthMethod(req.Method), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid state"))
			return
		}
	}

	principal, err := c.facade.AuthenticateSocial(ctx, req.Method, req.Code, req.RedirectURI)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrUnreachable):
			httperrors.WriteError(w, httperrors.ErrProviderUnreachable)
		case errors.Is(err, resolver.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("retry the login"))
		default:
			log.Error("social login fault", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}
	if principal == nil {
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		return
	}

	session, err := c.signer.SignSession(principal.UserID)
	if err != nil {
		log.Error("sign session failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httperrors.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		UserID:       principal.UserID,
		SessionToken: session,
	})
	log.Debug("social login ok", logger.AuthMethod(req.Method), logger.UserID(principal.UserID))
}
