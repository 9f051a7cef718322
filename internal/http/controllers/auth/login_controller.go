// Package auth exposes the login endpoints.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	authsvc "github.com/flizi/authcenter/internal/auth"
	dto "github.com/flizi/authcenter/internal/http/dto/auth"
	httperrors "github.com/flizi/authcenter/internal/http/errors"
	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/security/token"
)

// LoginController handles POST /api/login.
type LoginController struct {
	facade *authsvc.Facade
	signer *token.Signer
}

// NewLoginController creates the password login controller.
func NewLoginController(facade *authsvc.Facade, signer *token.Signer) *LoginController {
	return &LoginController{facade: facade, signer: signer}
}

// Login authenticates a username/password pair. Both an unknown username
// and a wrong password answer with the same invalid-credentials error.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Login"))

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON"))
		return
	}
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing credentials"))
		return
	}

	principal, err := c.facade.Authenticate(ctx, req.Username)
	if err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}
		log.Error("authenticate failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	if !password.Verify(req.Password, principal.Password) {
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
	log.Debug("password login ok", logger.UserID(principal.UserID))
}
