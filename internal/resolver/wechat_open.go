package resolver

import (
	"context"
	"fmt"

	"github.com/flizi/authcenter/internal/observability/logger"
	"github.com/flizi/authcenter/internal/provider"
	"github.com/flizi/authcenter/internal/security/password"
	"github.com/flizi/authcenter/internal/store/core"
)

// WechatOpen resolves an Open Platform (QR login) authorization code.
//
// Unlike the MP flow, the historical behavior does not reject an exchange
// that came back without a unionid: the lookup and create still run with
// the empty value. That asymmetry is almost certainly an upstream defect,
// but callers may depend on it, so it is kept and only unified behind
// RequireUnionID.
type WechatOpen struct {
	Store  core.Store
	Client provider.Exchanger

	// RequireUnionID rejects exchanges without a unionid, matching the MP
	// flow. Off by default.
	RequireUnionID bool
}

// Resolve exchanges the code and looks up or creates the account.
func (r *WechatOpen) Resolve(ctx context.Context, code, _ string) (*core.User, error) {
	log := logger.From(ctx).With(logger.Component("resolver.wechat_open"))

	tok, err := r.Client.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("wechat open exchange: %w", err)
	}
	if r.RequireUnionID && tok.UnionID == "" {
		log.Info("exchange without unionid, rejecting")
		return nil, fmt.Errorf("%w: no unionid in exchange", provider.ErrRejected)
	}

	u, err := r.Store.FindByColumn(ctx, core.ColumnWxUnionID, tok.UnionID)
	if err != nil {
		if !core.IsNotFound(err) {
			return nil, fmt.Errorf("find by unionid: %w", err)
		}

		hash, err := password.Placeholder()
		if err != nil {
			return nil, fmt.Errorf("placeholder password: %w", err)
		}
		created := &core.User{
			Password:  hash,
			WxUnionID: tok.UnionID,
		}
		u, err = insertOrRecover(ctx, r.Store, created, core.ColumnWxUnionID, tok.UnionID)
		if err != nil {
			return nil, err
		}
		log.Info("account created from wechat open login", logger.UserID(u.ID))
		return u, nil
	}

	// Historical oddity kept on purpose: when the record already carries an
	// openid, the same value is written back. Observable side effects
	// (audit trails, updated_at) may depend on the write happening.
	if u.WxOpenID != "" {
		if err := r.Store.UpdateWxOpenID(ctx, u.ID, u.WxOpenID); err != nil {
			return nil, fmt.Errorf("rewrite openid: %w", err)
		}
	}
	return u, nil
}
