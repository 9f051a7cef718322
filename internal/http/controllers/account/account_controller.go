// Package account exposes signup and the bind endpoints.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flizi/authcenter/internal/account"
	dto "github.com/flizi/authcenter/internal/http/dto/auth"
	httperrors "github.com/flizi/authcenter/internal/http/errors"
	"github.com/flizi/authcenter/internal/http/middlewares"
	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/store/core"
)

// Controller handles POST /api/signup and the /api/bind endpoints.
type Controller struct {
	service *account.Service
}

// NewController creates the account controller.
func NewController(service *account.Service) *Controller {
	return &Controller{service: service}
}

// Signup registers a phone account (or resets its password) after SMS
// verification.
func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON"))
		return
	}
	if req.Phone == "" || req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing phone or code"))
		return
	}
	if req.Password != req.PasswordConfirm {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("passwords do not match"))
		return
	}

	userID, err := c.service.Signup(ctx, req.Phone, req.Code, req.Password)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.SignupResponse{UserID: userID})
}

// BindPhone attaches a phone to the authenticated account.
func (c *Controller) BindPhone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middlewares.UserIDFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.BindPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON"))
		return
	}
	if req.Phone == "" || req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing phone or code"))
		return
	}

	if err := c.service.BindPhone(ctx, userID, req.Phone, req.Code); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BindWechatMP attaches an Official Account identity.
func (c *Controller) BindWechatMP(w http.ResponseWriter, r *http.Request) {
	c.bindWechat(w, r, c.service.BindWechatMP)
}

// BindWechatOpen attaches an Open Platform identity.
func (c *Controller) BindWechatOpen(w http.ResponseWriter, r *http.Request) {
	c.bindWechat(w, r, c.service.BindWechatOpen)
}

func (c *Controller) bindWechat(w http.ResponseWriter, r *http.Request, bind func(ctx context.Context, userID, code string) error) {
	ctx := r.Context()
	userID := middlewares.UserIDFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 32<<10)
	var req dto.BindWechatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid JSON"))
		return
	}
	if req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing code"))
		return
	}

	if err := bind(ctx, userID, req.Code); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidCode):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid or expired code"))
	case errors.Is(err, account.ErrWeakPassword):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("password too short"))
	case errors.Is(err, account.ErrMissingUnionID):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("wechat identity not linkable"))
	case errors.Is(err, account.ErrPhoneTaken), errors.Is(err, core.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("identifier already bound"))
	case errors.Is(err, provider.ErrUnreachable):
		httperrors.WriteError(w, httperrors.ErrProviderUnreachable)
	default:
		logger.From(r.Context()).Error("account operation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
